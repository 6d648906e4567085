package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Role is a clinic staff role. The set is closed: every membership row holds
// exactly one of these values.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleDentist   Role = "dentist"
	RoleHygienist Role = "hygienist"
	RoleAssistant Role = "assistant"
	RoleSecretary Role = "secretary"
)

// AssignableRoles are the roles that can be granted through invitations or
// member-role updates. Owner is excluded: it is created once at onboarding
// and never reassigned.
var AssignableRoles = []Role{RoleAdmin, RoleDentist, RoleHygienist, RoleAssistant, RoleSecretary}

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleDentist, RoleHygienist, RoleAssistant, RoleSecretary:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role: %s", s)
}

// IsAssignable reports whether the role may be granted to invited staff.
func (r Role) IsAssignable() bool {
	for _, a := range AssignableRoles {
		if r == a {
			return true
		}
	}
	return false
}

// Capability names an action a role may perform. The permission matrix below
// is the single source of truth for authorization decisions.
type Capability string

const (
	CapManageMembers      Capability = "manage_members"
	CapManageSettings     Capability = "manage_settings"
	CapManageBilling      Capability = "manage_billing"
	CapManagePatients     Capability = "manage_patients"
	CapManageAppointments Capability = "manage_appointments"
	CapManageRecords      Capability = "manage_records"
	CapManageDocuments    Capability = "manage_documents"
	CapManageFinancial    Capability = "manage_financial"
	CapViewFinancial      Capability = "view_financial"
	CapViewDashboard      Capability = "view_dashboard"
)

var capabilities = map[Role]map[Capability]bool{
	RoleOwner: allCapabilities(),
	RoleAdmin: allCapabilities(),
	RoleDentist: {
		CapManagePatients:     true,
		CapManageAppointments: true,
		CapManageRecords:      true,
		CapManageDocuments:    true,
		CapViewFinancial:      true,
		CapViewDashboard:      true,
	},
	RoleHygienist: {
		CapManagePatients:     true,
		CapManageAppointments: true,
		CapManageRecords:      true,
		CapManageDocuments:    true,
		CapViewDashboard:      true,
	},
	RoleAssistant: {
		CapManageAppointments: true,
		CapManageRecords:      true,
		CapManageDocuments:    true,
		CapViewDashboard:      true,
	},
	RoleSecretary: {
		CapManagePatients:     true,
		CapManageAppointments: true,
		CapManageDocuments:    true,
		CapManageFinancial:    true,
		CapViewFinancial:      true,
		CapViewDashboard:      true,
	},
}

func allCapabilities() map[Capability]bool {
	return map[Capability]bool{
		CapManageMembers:      true,
		CapManageSettings:     true,
		CapManageBilling:      true,
		CapManagePatients:     true,
		CapManageAppointments: true,
		CapManageRecords:      true,
		CapManageDocuments:    true,
		CapManageFinancial:    true,
		CapViewFinancial:      true,
		CapViewDashboard:      true,
	}
}

// Can reports whether the role is allowed to perform the capability.
func (r Role) Can(cap Capability) bool {
	return capabilities[r][cap]
}

// RoleContextKey is the echo context key under which the tenant middleware
// stores the caller's role for the current clinic.
const RoleContextKey = "tenant_role"

// RequireCapability returns middleware that rejects the request unless the
// caller's role in the current clinic grants the capability.
func RequireCapability(cap Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(RoleContextKey).(Role)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "no clinic membership")
			}
			if !role.Can(cap) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("your role does not permit %s", cap))
			}
			return next(c)
		}
	}
}

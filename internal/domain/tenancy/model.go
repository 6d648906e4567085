// Package tenancy manages clinics (tenants), staff memberships, and the
// per-request tenant resolution every other domain depends on.
package tenancy

import (
	"time"

	"github.com/google/uuid"

	"github.com/dentora/dentora/internal/platform/auth"
)

// Plan is a subscription tier. Limits for each tier live in the billing
// package.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// ValidPlan reports whether s names a known subscription tier.
func ValidPlan(s string) bool {
	switch Plan(s) {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Tenant is a dental clinic. Rooms and appointment types are clinic-level
// settings consumed by the scheduling UI.
type Tenant struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Address            string     `db:"address" json:"address"`
	Phone              string     `db:"phone" json:"phone"`
	Email              *string    `db:"email" json:"email,omitempty"`
	Plan               Plan       `db:"plan" json:"plan"`
	Rooms              []string   `db:"rooms" json:"rooms"`
	AppointmentTypes   []string   `db:"appointment_types" json:"appointment_types"`
	NotifyEmail        bool       `db:"notify_email" json:"notify_email"`
	NotifySMS          bool       `db:"notify_sms" json:"notify_sms"`
	StripeCustomerID   *string    `db:"stripe_customer_id" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Membership statuses.
const (
	MemberActive  = "active"
	MemberRemoved = "removed"
)

// Membership links a user to a tenant with a role. User name and email are
// denormalized onto the row when the membership is created, since identity
// lives in an external provider.
type Membership struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Role      auth.Role `db:"role" json:"role"`
	Status    string    `db:"status" json:"status"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserTenant is a tenant row annotated with the caller's role, as returned by
// the tenant-listing endpoint.
type UserTenant struct {
	Tenant   *Tenant   `json:"tenant"`
	Role     auth.Role `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

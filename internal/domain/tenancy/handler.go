package tenancy

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/pkg/envelope"
)

type Handler struct {
	svc          *Service
	cookieSecure bool
}

func NewHandler(svc *Service, cookieSecure bool) *Handler {
	return &Handler{svc: svc, cookieSecure: cookieSecure}
}

// RegisterRoutes wires the tenant endpoints. Onboarding and tenant listing
// only require authentication; everything else runs behind RequireTenant.
func (h *Handler) RegisterRoutes(authed, tenant *echo.Group) {
	authed.POST("/tenants", h.CreateTenant)
	authed.GET("/tenants", h.ListTenants)
	authed.POST("/tenants/switch", h.SwitchTenant)

	tenant.GET("/tenants/current", h.GetCurrent)
	tenant.PUT("/tenants/current", h.UpdateSettings, auth.RequireCapability(auth.CapManageSettings))

	members := tenant.Group("/members", auth.RequireCapability(auth.CapManageMembers))
	members.GET("", h.ListMembers)
	members.PUT("/:id/role", h.UpdateMemberRole)
	members.DELETE("/:id", h.RemoveMember)
}

func (h *Handler) CreateTenant(c echo.Context) error {
	var in CreateTenantInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)
	email := auth.EmailFromContext(ctx)

	t, err := h.svc.CreateTenant(ctx, userID, email, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	SetCookie(c, t.ID, h.cookieSecure)
	return envelope.OK(c, http.StatusCreated, "Clinic created successfully", t)
}

func (h *Handler) ListTenants(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListUserTenants(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

func (h *Handler) SwitchTenant(c echo.Context) error {
	var in struct {
		TenantID string `json:"tenant_id"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tenantID, err := uuid.Parse(in.TenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tenant_id")
	}
	ctx := c.Request().Context()
	m, err := h.svc.SwitchTenant(ctx, auth.UserIDFromContext(ctx), tenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	SetCookie(c, m.TenantID, h.cookieSecure)
	return envelope.OK(c, http.StatusOK, "Clinic switched", nil)
}

func (h *Handler) GetCurrent(c echo.Context) error {
	ctx := c.Request().Context()
	tc := FromContext(ctx)
	t, err := h.svc.GetTenant(ctx, tc.TenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "clinic not found")
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"tenant": t,
		"role":   tc.Role,
	})
}

func (h *Handler) UpdateSettings(c echo.Context) error {
	var in SettingsInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	t, err := h.svc.UpdateSettings(ctx, FromContext(ctx).TenantID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Settings saved successfully", t)
}

func (h *Handler) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListMembers(ctx, FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

func (h *Handler) UpdateMemberRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.svc.UpdateMemberRole(ctx, FromContext(ctx).TenantID, id, auth.Role(in.Role)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Role updated successfully", nil)
}

func (h *Handler) RemoveMember(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.RemoveMember(ctx, FromContext(ctx).TenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Member removed successfully", nil)
}

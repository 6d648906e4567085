package invitation

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/pkg/envelope"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires management endpoints onto the tenant group and the
// token endpoints onto the authenticated group: an invitee has an account but
// no membership yet, so the accept flow cannot sit behind tenant resolution.
func (h *Handler) RegisterRoutes(authed, tenant *echo.Group) {
	manage := tenant.Group("/invitations", auth.RequireCapability(auth.CapManageMembers))
	manage.POST("", h.Send)
	manage.GET("", h.List)
	manage.POST("/:id/resend", h.Resend)
	manage.POST("/:id/revoke", h.Revoke)

	authed.GET("/invitations/accept/:token", h.Lookup)
	authed.POST("/invitations/accept/:token", h.Accept)
	authed.POST("/invitations/decline/:token", h.Decline)
}

func (h *Handler) Send(c echo.Context) error {
	var in SendInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	tc := tenancy.FromContext(ctx)
	inv, err := h.svc.Send(ctx, tc.TenantID, tc.UserID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusCreated, "Invitation sent successfully", inv)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListByTenant(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

func (h *Handler) Resend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	inv, err := h.svc.Resend(ctx, tenancy.FromContext(ctx).TenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Invitation resent successfully", inv)
}

func (h *Handler) Revoke(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Revoke(ctx, tenancy.FromContext(ctx).TenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Invitation revoked", nil)
}

func (h *Handler) Lookup(c echo.Context) error {
	inv, tenant, err := h.svc.Lookup(c.Request().Context(), c.Param("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "", map[string]interface{}{
		"invitation":  inv,
		"clinic_name": tenant.Name,
	})
}

func (h *Handler) Accept(c echo.Context) error {
	ctx := c.Request().Context()
	userID := auth.UserIDFromContext(ctx)
	m, err := h.svc.Accept(ctx, c.Param("token"), userID, auth.EmailFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Invitation accepted", m)
}

func (h *Handler) Decline(c echo.Context) error {
	if err := h.svc.Decline(c.Request().Context(), c.Param("token")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Invitation declined", nil)
}

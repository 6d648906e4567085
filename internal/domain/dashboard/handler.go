package dashboard

import (
	"net/http"

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

func (h *Handler) RegisterRoutes(tenant *echo.Group) {
	g := tenant.Group("/dashboard", auth.RequireCapability(auth.CapViewDashboard))
	g.GET("/stats", h.Stats)
	g.GET("/today", h.Today)
	g.GET("/recent-patients", h.RecentPatients)
}

func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.svc.Stats(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", stats)
}

func (h *Handler) Today(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.TodaysAppointments(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

func (h *Handler) RecentPatients(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.RecentPatients(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

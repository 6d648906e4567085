package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/pkg/envelope"
)

// Stripe recommends a request body cap on webhook endpoints.
const maxWebhookBody = 64 * 1024

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(tenant *echo.Group) {
	g := tenant.Group("/billing")
	g.GET("/plans", h.Plans)
	g.GET("/usage", h.Usage)
	g.GET("/subscription", h.Subscription)
	g.POST("/checkout", h.Checkout, auth.RequireCapability(auth.CapManageBilling))
	g.POST("/portal", h.Portal, auth.RequireCapability(auth.CapManageBilling))
}

// RegisterWebhook mounts the Stripe webhook outside the authenticated
// surface. Stripe signs requests; there is no user session to check.
func (h *Handler) RegisterWebhook(public *echo.Group) {
	public.POST("/billing/webhook", h.Webhook)
}

func (h *Handler) Plans(c echo.Context) error {
	return envelope.OK(c, http.StatusOK, "", PlanFeatures())
}

func (h *Handler) Usage(c echo.Context) error {
	ctx := c.Request().Context()
	usage, err := h.svc.Usage(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", usage)
}

func (h *Handler) Subscription(c echo.Context) error {
	ctx := c.Request().Context()
	sub, err := h.svc.Subscription(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return envelope.OK(c, http.StatusOK, "", nil)
		}
		return err
	}
	return envelope.OK(c, http.StatusOK, "", sub)
}

type checkoutRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !tenancy.ValidPlan(req.Plan) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan")
	}
	plan := tenancy.Plan(req.Plan)
	ctx := c.Request().Context()
	url, err := h.svc.CreateCheckout(ctx, tenancy.FromContext(ctx).TenantID, plan)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "", map[string]string{"url": url})
}

func (h *Handler) Portal(c echo.Context) error {
	ctx := c.Request().Context()
	url, err := h.svc.CreatePortal(ctx, tenancy.FromContext(ctx).TenantID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "", map[string]string{"url": url})
}

func (h *Handler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read payload")
	}
	event, err := webhook.ConstructEvent(payload,
		c.Request().Header.Get("Stripe-Signature"), h.svc.cfg.WebhookSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook signature")
	}
	if err := h.svc.ApplyEvent(c.Request().Context(), event); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

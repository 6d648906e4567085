package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/pkg/envelope"
	"github.com/dentora/dentora/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(tenant *echo.Group) {
	g := tenant.Group("/appointments", auth.RequireCapability(auth.CapManageAppointments))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Create(ctx, tenancy.FromContext(ctx).TenantID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusCreated, "Appointment created successfully", a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	a, err := h.svc.Get(ctx, tenancy.FromContext(ctx).TenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return envelope.OK(c, http.StatusOK, "", a)
}

// List supports three shapes: by patient, by day, or the paginated tenant
// schedule.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := tenancy.FromContext(ctx).TenantID

	if pid := c.QueryParam("patient_id"); pid != "" {
		patientID, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, err := h.svc.ListByPatient(ctx, tenantID, patientID)
		if err != nil {
			return err
		}
		return envelope.OK(c, http.StatusOK, "", items)
	}

	if date := c.QueryParam("date"); date != "" {
		items, err := h.svc.ListByDay(ctx, tenantID, date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return envelope.OK(c, http.StatusOK, "", items)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, tenantID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	a, err := h.svc.Update(ctx, tenancy.FromContext(ctx).TenantID, id, in)
	if err == ErrAppointmentNotFound {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusOK, "Appointment updated successfully", a)
}

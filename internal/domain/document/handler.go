package document

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

func (h *Handler) RegisterRoutes(tenant *echo.Group) {
	g := tenant.Group("/documents", auth.RequireCapability(auth.CapManageDocuments))
	g.POST("", h.Upload)
	g.GET("", h.List)
	g.GET("/:id/download", h.Download)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	in := UploadInput{
		PatientID:    c.FormValue("patient_id"),
		DocumentType: c.FormValue("document_type"),
		FileName:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		Content:      src,
		Size:         file.Size,
	}
	if v := c.FormValue("appointment_id"); v != "" {
		in.AppointmentID = &v
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}

	ctx := c.Request().Context()
	d, err := h.svc.Upload(ctx, tenancy.FromContext(ctx).TenantID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return envelope.OK(c, http.StatusCreated, "Document uploaded successfully", d)
}

func (h *Handler) List(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	ctx := c.Request().Context()
	items, err := h.svc.ListByPatient(ctx, tenancy.FromContext(ctx).TenantID, patientID)
	if err != nil {
		return err
	}
	return envelope.OK(c, http.StatusOK, "", items)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	d, rc, err := h.svc.Download(ctx, tenancy.FromContext(ctx).TenantID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+d.FileName+`"`)
	return c.Stream(http.StatusOK, d.ContentType, rc)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	if err := h.svc.Delete(ctx, tenancy.FromContext(ctx).TenantID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return envelope.OK(c, http.StatusOK, "Document deleted", nil)
}

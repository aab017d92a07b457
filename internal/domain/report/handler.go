package report

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labreport/labreport/internal/domain/record"
	"github.com/labreport/labreport/internal/platform/auth"
)

type Handler struct {
	svc     *Service
	records *record.Service
}

func NewHandler(svc *Service, records *record.Service) *Handler {
	return &Handler{svc: svc, records: records}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "nurse", "lab_tech"))
	g.POST("/records/:id/report", h.GenerateReport)
	g.GET("/extraction", h.GetExtraction)
}

// GenerateReport runs the stored record through the pipeline and returns
// the rendering contract as JSON.
func (h *Handler) GenerateReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.records.GetRecord(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.JSON(http.StatusOK, h.svc.Process(rec))
}

// GetExtraction returns the cross-record rollup accumulated so far.
func (h *Handler) GetExtraction(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Extraction())
}

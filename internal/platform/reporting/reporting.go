package reporting

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/vitals/internal/domain/vitals"
	"github.com/ehr/vitals/internal/platform/auth"
	"github.com/ehr/vitals/internal/platform/metrics"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ReportDefinition describes a downloadable report.
type ReportDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Path        string   `json:"path"`
	Formats     []string `json:"formats"`
	Parameters  []string `json:"parameters"`
}

// PredefinedReports is the list of available report exports.
var PredefinedReports = []ReportDefinition{
	{
		ID:          "visits",
		Name:        "Visits by Date",
		Description: "Every visit, optionally filtered by year and month, one row per visit",
		Path:        "/reports/visits",
		Formats:     []string{"xlsx"},
		Parameters:  []string{"year", "month"},
	},
	{
		ID:          "stats",
		Name:        "Vital Sign Averages",
		Description: "Mean of each vital sign for one patient, or for all patients when id is 0",
		Path:        "/reports/stats/:id",
		Formats:     []string{"pdf", "xlsx"},
		Parameters:  []string{"format"},
	},
	{
		ID:          "follow-up",
		Name:        "Follow-up Candidates",
		Description: "Patients with at least one visit outside the normal vital ranges",
		Path:        "/reports/follow-up",
		Formats:     []string{"xlsx"},
		Parameters:  []string{},
	},
}

// FindReport looks up a report definition by ID.
func FindReport(id string) *ReportDefinition {
	for i := range PredefinedReports {
		if PredefinedReports[i].ID == id {
			return &PredefinedReports[i]
		}
	}
	return nil
}

// Handler provides HTTP handlers for report exports.
type Handler struct {
	svc *vitals.Service
}

// NewHandler creates a new reporting handler.
func NewHandler(svc *vitals.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	reportGroup := api.Group("/reports", auth.RequireRole("admin", "physician", "nurse"))
	reportGroup.GET("", h.ListReports)
	reportGroup.GET("/definitions/:id", h.GetReport)
	reportGroup.GET("/visits", h.ExportVisits)
	reportGroup.GET("/stats/:id", h.ExportStats)
	reportGroup.GET("/follow-up", h.ExportFollowUps)
}

// ListReports returns all available report definitions.
func (h *Handler) ListReports(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedReports)
}

// GetReport returns a single report definition.
func (h *Handler) GetReport(c echo.Context) error {
	def := FindReport(c.Param("id"))
	if def == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	return c.JSON(http.StatusOK, def)
}

// ExportVisits returns the visits matching the year/month filter as XLSX.
func (h *Handler) ExportVisits(c echo.Context) error {
	start := time.Now()
	f, err := vitals.ParseDateFilter(c.QueryParam("year"), c.QueryParam("month"))
	if err != nil {
		return vitals.HTTPError(err)
	}
	visits, err := h.svc.VisitsByDate(c.Request().Context(), f)
	if err != nil {
		return vitals.HTTPError(err)
	}
	data, err := BuildVisitsXLSX(visits)
	return h.send(c, "xlsx", "visits.xlsx", data, err, start)
}

// ExportStats renders the vital sign averages as PDF (default) or XLSX.
func (h *Handler) ExportStats(c echo.Context) error {
	start := time.Now()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	format := c.QueryParam("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
	}

	stats, err := h.svc.Stats(c.Request().Context(), id)
	if err != nil {
		return vitals.HTTPError(err)
	}
	var data []byte
	if format == "pdf" {
		data, err = BuildStatsPDF(stats)
	} else {
		data, err = BuildStatsXLSX(stats)
	}
	return h.send(c, format, fmt.Sprintf("stats-%d.%s", id, format), data, err, start)
}

// ExportFollowUps lists follow-up candidates with their flagged visits as XLSX.
func (h *Handler) ExportFollowUps(c echo.Context) error {
	start := time.Now()
	report, err := h.svc.FollowUpReport(c.Request().Context())
	if err != nil {
		return vitals.HTTPError(err)
	}
	data, err := BuildFollowUpXLSX(report)
	return h.send(c, "xlsx", "follow-up.xlsx", data, err, start)
}

func (h *Handler) send(c echo.Context, format, filename string, data []byte, err error, start time.Time) error {
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("render %s: %v", format, err))
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
	mime := mimeXLSX
	if format == "pdf" {
		mime = mimePDF
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, mime, data)
}

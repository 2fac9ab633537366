package vitals

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/vitals/internal/platform/auth"
	"github.com/ehr/vitals/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – admin, physician, nurse
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	readGroup.GET("/patients/visits", h.FindVisitsByDate)
	readGroup.GET("/patients/follow-up", h.FindFollowUps)
	readGroup.GET("/patients/stats/:id", h.GetStats)
	readGroup.GET("/patients/:id", h.GetPatients)

	// Write endpoints – admin, nurse
	writeGroup := api.Group("", auth.RequireRole("admin", "nurse"))
	writeGroup.POST("/patients", h.AddVisit)
	writeGroup.POST("/patients/file", h.UploadFile)
	writeGroup.DELETE("/patients/:id", h.DeleteAllVisits)
}

// HTTPError maps vitals errors onto HTTP errors.
func HTTPError(err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.Is(err, ErrMalformedQuery):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrNoData):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSourceUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func parsePatientParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

// GetPatients lists one patient's visits, or every patient's when id is 0.
// With ?format=text the listing is rendered as plain text.
func (h *Handler) GetPatients(c echo.Context) error {
	id, err := parsePatientParam(c)
	if err != nil {
		return err
	}
	records, err := h.svc.Patients(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, strings.Join(PatientReportLines(records), "\n")+"\n")
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) GetStats(c echo.Context) error {
	id, err := parsePatientParam(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.Stats(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, strings.Join(StatsReportLines(stats), "\n")+"\n")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) FindVisitsByDate(c echo.Context) error {
	f, err := ParseDateFilter(c.QueryParam("year"), c.QueryParam("month"))
	if err != nil {
		return HTTPError(err)
	}
	visits, err := h.svc.VisitsByDate(c.Request().Context(), f)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.Page(visits, pagination.FromContext(c)))
}

func (h *Handler) FindFollowUps(c echo.Context) error {
	ids, err := h.svc.FollowUps(c.Request().Context())
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_ids": ids,
		"total":       len(ids),
	})
}

// AddVisitRequest is the body of POST /patients.
type AddVisitRequest struct {
	PatientID int `json:"patient_id"`
	VisitInput
}

func (h *Handler) AddVisit(c echo.Context) error {
	var req AddVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.AddVisit(c.Request().Context(), req.PatientID, req.VisitInput)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) DeleteAllVisits(c echo.Context) error {
	id, err := parsePatientParam(c)
	if err != nil {
		return err
	}
	n, err := h.svc.DeleteAllVisits(c.Request().Context(), id)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient_id":     id,
		"deleted_visits": n,
		"message":        fmt.Sprintf("Data for patient %d has been deleted.", id),
	})
}

// UploadFile parses a multipart vitals file (form field "file") without
// touching the backing file.
func (h *Handler) UploadFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return HTTPError(fmt.Errorf("%w: %v", ErrSourceUnavailable, err))
	}
	defer src.Close()

	res, err := h.svc.Parse(src)
	if err != nil {
		return HTTPError(err)
	}
	return c.JSON(http.StatusOK, res.Summary())
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHelpers_AreSafeAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg)
	// A second Init is a no-op.
	Init(prometheus.NewRegistry())

	IncIngestLine(ResultSuccess)
	IncIngestLine("")
	IncIngestLine(ResultError)
	IncIngestRejected("heart_rate")
	IncIngestRejected("")
	ObserveIngest(ResultSuccess, 5*time.Millisecond)
	IncMutation("add", ResultSuccess)
	ObserveExport("pdf", ResultSuccess, time.Millisecond)
	ObserveExport("", ResultError, time.Millisecond)

	if got := testutil.ToFloat64(ingestLines.WithLabelValues(ResultSuccess)); got != 2 {
		t.Errorf("expected 2 successful lines, got %v", got)
	}
	if got := testutil.ToFloat64(ingestRejected.WithLabelValues("unknown")); got != 1 {
		t.Errorf("expected unknown rule counted once, got %v", got)
	}
	if got := testutil.ToFloat64(mutationTotal.WithLabelValues("add", ResultSuccess)); got != 1 {
		t.Errorf("expected 1 add, got %v", got)
	}
	if got := testutil.ToFloat64(exportTotal.WithLabelValues("unknown", ResultError)); got != 1 {
		t.Errorf("expected 1 failed export, got %v", got)
	}

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("expected metrics registered with the first registry")
	}
}

func TestHTTPMiddleware_CountsByRoute(t *testing.T) {
	Init(prometheus.NewRegistry())

	e := echo.New()
	e.Use(HTTPMiddleware())
	e.GET("/patients/:id", func(c echo.Context) error {
		if c.Param("id") == "0" {
			return c.String(http.StatusOK, "ok")
		}
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	})

	for _, path := range []string{"/patients/0", "/patients/5", "/patients/6"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/patients/:id", "404")); got != 2 {
		t.Errorf("expected 2 not-found requests on the route pattern, got %v", got)
	}
	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("expected no requests in flight, got %v", got)
	}
}

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "vitals_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	ingestLines    *prometheus.CounterVec
	ingestRejected *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	mutationTotal *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
)

// Init registers the vitals metrics with reg. Only the first call registers;
// later calls are no-ops. Helpers are safe to call before Init.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ingestLines = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_lines_total",
				Help: "Lines read from the vitals source by result",
			},
			[]string{"result"},
		)
		ingestRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rejected_total",
				Help: "Rejected lines by violated rule",
			},
			[]string{"rule"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Time to load a visit store from its source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		mutationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "mutations_total",
				Help: "Visit store mutations by operation and result",
			},
			[]string{"operation", "result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "http_requests_in_flight",
			Help: "HTTP requests currently being served",
		})

		reg.MustRegister(
			httpRequests,
			httpLatency,
			httpInFlight,
			ingestLines,
			ingestRejected,
			ingestLatency,
			mutationTotal,
			exportTotal,
			exportLatency,
		)
	})
}

// IncIngestLine counts one line read during ingestion.
func IncIngestLine(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if ingestLines != nil {
		ingestLines.WithLabelValues(result).Inc()
	}
}

// IncIngestRejected counts a line skipped because it violated rule.
func IncIngestRejected(rule string) {
	if rule == "" {
		rule = "unknown"
	}
	if ingestRejected != nil {
		ingestRejected.WithLabelValues(rule).Inc()
	}
}

// ObserveIngest records how long a full load took.
func ObserveIngest(result string, duration time.Duration) {
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncMutation counts an add or delete against the store.
func IncMutation(operation, result string) {
	if mutationTotal != nil {
		mutationTotal.WithLabelValues(operation, result).Inc()
	}
}

// ObserveExport records a report export.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the processing unit.
package observability

import "github.com/prometheus/client_golang/prometheus"

// EngineBuckets defines histogram buckets for engine call latencies,
// ranging from 1ms to 60s. Placeholder engines answer in microseconds,
// remote engines in seconds.
var EngineBuckets = []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 2, 5, 10, 30, 60}

// Run outcomes used as the status label of RunsTotal.
const (
	RunStatusOK          = "ok"
	RunStatusInvalid     = "invalid"
	RunStatusEngineError = "engine_error"
	RunStatusIOError     = "io_error"
	RunStatusCacheError  = "cache_error"
)

// FormatOther is the format label for tags outside the known output formats.
const FormatOther = "other"

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procunit_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procunit_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: EngineBuckets,
		},
		[]string{"method"},
	)

	// RunsTotal counts pipeline runs by engine, output format and outcome.
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procunit_runs_total",
			Help: "Processing runs",
		},
		[]string{"engine", "format", "status"},
	)

	// EngineLatency records engine call latency in seconds.
	EngineLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "procunit_engine_latency_seconds",
			Help:    "Engine call latency",
			Buckets: EngineBuckets,
		},
		[]string{"engine", "operation"},
	)

	// ResultBytesTotal counts bytes produced by engines.
	ResultBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procunit_result_bytes_total",
			Help: "Bytes produced by engines",
		},
		[]string{"engine"},
	)

	// CachedResults tracks the number of results held by the result cache.
	CachedResults = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "procunit_cached_results",
			Help: "Results held in the result cache",
		},
	)

	// AuthRejectedTotal counts requests rejected by the auth middleware.
	AuthRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "procunit_auth_rejected_total",
			Help: "Authentication rejections",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RunsTotal,
		EngineLatency,
		ResultBytesTotal,
		CachedResults,
		AuthRejectedTotal,
	)
}

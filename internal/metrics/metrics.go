package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the RBO service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec

	// Session Metrics
	LoginAttemptsTotal *prometheus.CounterVec

	// Business Metrics
	ClassificationsTotal *prometheus.CounterVec
	OperatorsByTier      *prometheus.GaugeVec
	ExportsTotal         *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg.
// Pass prometheus.DefaultRegisterer in the server and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbo_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rbo_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rbo_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbo_db_queries_total",
				Help: "Total operator store queries by operation and outcome",
			},
			[]string{"query_type", "outcome"},
		),
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rbo_db_query_duration_seconds",
				Help:    "Operator store query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"query_type"},
		),

		// Session Metrics
		LoginAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbo_login_attempts_total",
				Help: "Dashboard and API login attempts by result",
			},
			[]string{"result"},
		),

		// Business Metrics
		ClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbo_classifications_total",
				Help: "Operator risk classifications by policy and tier",
			},
			[]string{"policy", "tier"},
		),
		OperatorsByTier: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rbo_operators_by_tier",
				Help: "Current number of stored operators per risk tier",
			},
			[]string{"tier"},
		),
		ExportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbo_exports_total",
				Help: "Spreadsheet exports by outcome",
			},
			[]string{"outcome"},
		),
	}
}

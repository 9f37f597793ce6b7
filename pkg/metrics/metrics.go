package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Aggregation metrics
	AggregationsTotal   *prometheus.CounterVec
	AggregationDuration *prometheus.HistogramVec
	RowsFolded          *prometheus.CounterVec

	// Store metrics
	StoreQueries      *prometheus.CounterVec
	StoreQueryLatency *prometheus.HistogramVec
	StoreFailures     *prometheus.CounterVec

	// Intake metrics
	RowsIngested *prometheus.CounterVec
	RowsRejected *prometheus.CounterVec
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all instruments on the given registerer; tests pass
// a fresh prometheus.NewRegistry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		AggregationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_aggregations_total",
				Help: "Total number of insight aggregation passes",
			},
			[]string{"level", "status"},
		),

		AggregationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insight_aggregation_duration_seconds",
				Help:    "Duration of insight aggregation passes in seconds",
				Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{"level"},
		),

		RowsFolded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_rows_folded_total",
				Help: "Total number of daily metric rows folded into aggregates",
			},
			[]string{"level"},
		),

		StoreQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_queries_total",
				Help: "Total number of row store and metadata cache queries",
			},
			[]string{"store", "status"},
		),

		StoreQueryLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_query_duration_seconds",
				Help:    "Row store and metadata cache query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"store"},
		),

		StoreFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_failures_total",
				Help: "Total number of row store and metadata cache failures",
			},
			[]string{"store", "error_type"},
		),

		RowsIngested: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_rows_total",
				Help: "Total number of daily metric rows accepted through intake",
			},
			[]string{"source"},
		),

		RowsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_rows_rejected_total",
				Help: "Total number of intake rows rejected by validation",
			},
			[]string{"source", "reason"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// Aggregation pass metrics
func (m *Metrics) RecordAggregation(level, status string, rows int, duration time.Duration) {
	m.AggregationsTotal.WithLabelValues(level, status).Inc()
	m.AggregationDuration.WithLabelValues(level).Observe(duration.Seconds())
	m.RowsFolded.WithLabelValues(level).Add(float64(rows))
}

// Store query metrics
func (m *Metrics) RecordStoreQuery(store, status string, duration time.Duration) {
	m.StoreQueries.WithLabelValues(store, status).Inc()
	m.StoreQueryLatency.WithLabelValues(store).Observe(duration.Seconds())
}

// Store failure metrics
func (m *Metrics) RecordStoreFailure(store, errorType string) {
	m.StoreFailures.WithLabelValues(store, errorType).Inc()
}

// Intake metrics
func (m *Metrics) RecordRowsIngested(source string, count int) {
	m.RowsIngested.WithLabelValues(source).Add(float64(count))
}

func (m *Metrics) RecordRowRejected(source, reason string) {
	m.RowsRejected.WithLabelValues(source, reason).Inc()
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the API
// server, the storage layer, and the optional ingest consumer.
type Metrics struct {
	// HTTP serving metrics.
	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route

	// Storage metrics, one series per named store operation.
	QueryDuration *prometheus.HistogramVec // labels: operation
	QueryErrors   *prometheus.CounterVec   // labels: operation

	// Declarations-ingest metrics.
	IngestRecords   prometheus.Counter
	IngestErrors    prometheus.Counter
	ConsumerRunning prometheus.Gauge

	// Favorites metrics.
	FavoriteOps *prometheus.CounterVec // labels: op={add,remove,update_note}
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stormhaven",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stormhaven",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stormhaven",
			Name:      "query_duration_seconds",
			Help:      "Database operation duration by operation name.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stormhaven",
			Name:      "query_errors_total",
			Help:      "Database operation failures by operation name.",
		}, []string{"operation"}),
		IngestRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stormhaven",
			Name:      "ingest_records_total",
			Help:      "Declaration records loaded from the ingest topic.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stormhaven",
			Name:      "ingest_errors_total",
			Help:      "Ingest records skipped because they could not be parsed or stored.",
		}),
		ConsumerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stormhaven",
			Name:      "consumer_running",
			Help:      "1 when the ingest consumer is active, 0 when shut down.",
		}),
		FavoriteOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stormhaven",
			Name:      "favorite_ops_total",
			Help:      "Favorites mutations by operation.",
		}, []string{"op"}),
	}

	prometheus.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.QueryDuration,
		m.QueryErrors,
		m.IngestRecords,
		m.IngestErrors,
		m.ConsumerRunning,
		m.FavoriteOps,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		HTTPRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stormhaven", Name: "http_requests_total"}, []string{"route", "status"}),
		HTTPDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "stormhaven", Name: "http_request_duration_seconds"}, []string{"route"}),
		QueryDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "stormhaven", Name: "query_duration_seconds"}, []string{"operation"}),
		QueryErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stormhaven", Name: "query_errors_total"}, []string{"operation"}),
		IngestRecords:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stormhaven", Name: "ingest_records_total"}),
		IngestErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "stormhaven", Name: "ingest_errors_total"}),
		ConsumerRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "stormhaven", Name: "consumer_running"}),
		FavoriteOps:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "stormhaven", Name: "favorite_ops_total"}, []string{"op"}),
	}
}

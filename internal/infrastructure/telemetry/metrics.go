package telemetry

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopcart/backend/internal/domain/shared"
)

const metricsNamespace = "shopcart"

// Metrics holds the Prometheus collectors of the service on a private registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	dbDuration    *prometheus.HistogramVec
	domainEvents  *prometheus.CounterVec
	imageDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them together with the Go
// runtime and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		}, []string{"operation", "table"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "domain",
			Name:      "events_total",
			Help:      "Total number of published domain events.",
		}, []string{"event_type"}),
		imageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "images",
			Name:      "processing_duration_seconds",
			Help:      "Duration of image processing in seconds.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.dbDuration,
		m.domainEvents,
		m.imageDuration,
	)

	return m
}

// Registry returns the registry backing the metrics endpoint
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics page
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RegisterDBStats exports connection pool statistics of db
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// RequestStarted increments the in-flight gauge and returns the function
// that records the finished request
func (m *Metrics) RequestStarted() func(method, route string, status int, elapsed time.Duration) {
	m.httpInFlight.Inc()
	return func(method, route string, status int, elapsed time.Duration) {
		m.httpInFlight.Dec()
		m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

// ObserveDBQuery records the duration of a database operation
func (m *Metrics) ObserveDBQuery(operation, table string, elapsed time.Duration) {
	m.dbDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

// ObserveImageProcessing records the duration of one image conversion
func (m *Metrics) ObserveImageProcessing(err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.imageDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// Handle counts a domain event. Metrics subscribes to the event bus as a
// wildcard handler.
func (m *Metrics) Handle(_ context.Context, event shared.DomainEvent) error {
	m.domainEvents.WithLabelValues(event.EventType()).Inc()
	return nil
}

// EventTypes returns nil so every event is counted
func (m *Metrics) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*Metrics)(nil)

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

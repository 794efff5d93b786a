package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the event pipeline and
// the HTTP surface.
type Metrics struct {
	registry *prometheus.Registry

	EventsStored      *prometheus.CounterVec
	ConversionsStored prometheus.Counter
	RequestsProcessed *prometheus.CounterVec
	StoreDuration     prometheus.Histogram
}

// New registers all instruments on a fresh registry. Keeping a private
// registry (instead of the global default) lets tests create as many
// instances as they like.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		EventsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_events_stored_total",
			Help: "Total number of events persisted, by event type",
		}, []string{"event_type"}),
		ConversionsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analytics_conversions_recorded_total",
			Help: "Total number of conversion events recorded",
		}),
		RequestsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "path", "status"}),
		StoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_event_store_duration_seconds",
			Help:    "Time to run the full event write pipeline",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.EventsStored,
		m.ConversionsStored,
		m.RequestsProcessed,
		m.StoreDuration,
	)
	return m
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Package metrics exposes Prometheus counters for gameplay and persistence.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors recorded by the game services.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	completions       *prometheus.CounterVec
	attempts          *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	sessions          prometheus.Counter
	eventClients      prometheus.Gauge
	requests          *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alfabeta_completions_total",
			Help: "Items completed, by kind.",
		}, []string{"kind"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alfabeta_attempts_total",
			Help: "Evaluated practice attempts, by result.",
		}, []string{"result"}),
		persistenceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alfabeta_persistence_errors_total",
			Help: "State load and save failures.",
		}, []string{"op"}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alfabeta_sessions_completed_total",
			Help: "Sessions that reached the summary screen.",
		}),
		eventClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alfabeta_event_clients",
			Help: "Connected event stream clients.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alfabeta_http_requests_total",
			Help: "HTTP requests, by method and status.",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.completions,
		m.attempts,
		m.persistenceErrors,
		m.sessions,
		m.eventClients,
		m.requests,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Completion(kind string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(kind).Inc()
}

func (m *Metrics) Attempt(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.attempts.WithLabelValues(result).Inc()
}

func (m *Metrics) PersistenceError(op string) {
	if m == nil {
		return
	}
	m.persistenceErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SessionCompleted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) EventClients(n int) {
	if m == nil {
		return
	}
	m.eventClients.Set(float64(n))
}

func (m *Metrics) Request(method, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
}

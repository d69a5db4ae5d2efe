// Package metrics collects the emulator's Prometheus metrics. Each server
// instance owns its own registry, so tests can spin up servers side by side
// without collisions in the default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the emulator's instrument set behind one registry.
type Metrics struct {
	registry *prometheus.Registry

	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	missionEvents  *prometheus.CounterVec
	sessionsIssued prometheus.Counter
	resets         prometheus.Counter
}

// New creates a Metrics set with everything registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "linemock_http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linemock_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linemock_http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		missionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linemock_mission_events_total",
				Help: "Mission lifecycle events by kind.",
			},
			[]string{"event"},
		),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linemock_sessions_issued_total",
			Help: "Sessions issued by the login endpoint.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linemock_resets_total",
			Help: "Debug resets performed.",
		}),
	}

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		m.missionEvents,
		m.sessionsIssued,
		m.resets,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps next with request counting and latency observation.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		// The mux fills in r.Pattern; using it instead of the raw path keeps
		// label cardinality bounded when paths carry mission IDs.
		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		status := strconv.Itoa(sw.code)

		m.duration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(r.Method, path, status).Inc()
		m.inFlight.Dec()
	})
}

// MissionCreated records a mission creation.
func (m *Metrics) MissionCreated() {
	m.missionEvents.WithLabelValues("created").Inc()
}

// MissionResolved records a mission reaching a terminal status.
func (m *Metrics) MissionResolved(status string) {
	m.missionEvents.WithLabelValues(status).Inc()
}

// SessionIssued records a successful login.
func (m *Metrics) SessionIssued() {
	m.sessionsIssued.Inc()
}

// Reset records a debug reset.
func (m *Metrics) Reset() {
	m.resets.Inc()
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

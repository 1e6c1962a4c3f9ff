// Package metrics provides Prometheus instrumentation of the client:
// API round trips, session refreshes and leaderboard loads.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the client metrics. It implements api.Recorder and session.Metrics.
type Manager struct {
	registry  *prometheus.Registry
	namespace string
	buckets   []float64

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	refreshes           *prometheus.CounterVec
	sessionState        *prometheus.GaugeVec
	leaderboardLoads    *prometheus.CounterVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the request latency histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry registers the metrics on r instead of a private registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// sessionStates are the values of the state label.
var sessionStates = []string{"unknown", "loading", "authenticated", "anonymous"}

// NewManager creates the metrics on a private registry unless WithRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		registry:  prometheus.NewRegistry(),
		namespace: "fantasy11",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "client",
		Name:      "api_requests_total",
		Help:      "API requests by method, route template and status (0 = transport error)",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "client",
		Name:      "api_request_duration_seconds",
		Help:      "API request latency",
		Buckets:   m.buckets,
	}, []string{"method", "route"})

	m.refreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "refreshes_total",
		Help:      "Token refreshes by result",
	}, []string{"result"})

	m.sessionState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "state",
		Help:      "1 for the current session state, 0 otherwise",
	}, []string{"state"})

	m.leaderboardLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "leaderboard",
		Name:      "loads_total",
		Help:      "Leaderboard loads by source (live or cache)",
	}, []string{"source"})

	m.StateChanged("unknown")
	return m
}

// ObserveRequest records one API round trip.
func (m *Manager) ObserveRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RefreshCompleted counts a token refresh.
func (m *Manager) RefreshCompleted(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// StateChanged sets the session state gauge.
func (m *Manager) StateChanged(state string) {
	for _, s := range sessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.sessionState.WithLabelValues(s).Set(v)
	}
}

// LeaderboardLoaded counts a leaderboard load; stale loads came from the cache.
func (m *Manager) LeaderboardLoaded(stale bool) {
	source := "live"
	if stale {
		source = "cache"
	}
	m.leaderboardLoads.WithLabelValues(source).Inc()
}

// Registry returns the registry holding the metrics.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and cache collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheEvents *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// New registers the collectors on reg. reg may also be a *prometheus.Registry,
// in which case Handler serves it.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	cacheEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "view_cache_events_total",
		Help: "View cache lookups and invalidations.",
	}, []string{"view", "result"})
	reg.MustRegister(requests, duration, cacheEvents)

	m := &Metrics{
		requests:    requests,
		duration:    duration,
		cacheEvents: cacheEvents,
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CacheEvent counts a hit, miss, error or invalidate for the named view.
func (m *Metrics) CacheEvent(view, result string) {
	if m == nil || m.cacheEvents == nil {
		return
	}
	m.cacheEvents.WithLabelValues(normalizeLabel(view), result).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

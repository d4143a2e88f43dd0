package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "league"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	buildDuration   *prometheus.HistogramVec
	statWrites      *prometheus.CounterVec
	scoreRecomputes prometheus.Counter
	outboxPublished prometheus.Counter
	outboxFailures  prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on reg, plus the Go runtime and
// process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	auto := promauto.With(reg)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Metrics{
		registry: reg,
		buildDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "standings",
			Name:      "build_duration_seconds",
			Help:      "Time to load and rank a ladder or leaderboard",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		statWrites: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "stats",
			Name:      "writes_total",
			Help:      "Stat entry operations committed, by operation",
		}, []string{"op"}),
		scoreRecomputes: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scores",
			Name:      "recomputes_total",
			Help:      "Match scores rewritten from the box score",
		}),
		outboxPublished: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "outbox",
			Name:      "published_total",
			Help:      "Outbox events published to the broker",
		}),
		outboxFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "outbox",
			Name:      "publish_failures_total",
			Help:      "Outbox events that failed to publish",
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveBuild records how long a ladder or leaderboard took.
func (m *Metrics) ObserveBuild(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.buildDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// StatWrite counts one committed stat operation.
func (m *Metrics) StatWrite(op string) {
	if m == nil {
		return
	}
	m.statWrites.WithLabelValues(op).Inc()
}

// ScoreRecomputed counts rewritten match scores.
func (m *Metrics) ScoreRecomputed(n int) {
	if m == nil {
		return
	}
	m.scoreRecomputes.Add(float64(n))
}

// OutboxPublished counts published outbox events.
func (m *Metrics) OutboxPublished(n int) {
	if m == nil {
		return
	}
	m.outboxPublished.Add(float64(n))
}

// OutboxFailed counts one failed publish.
func (m *Metrics) OutboxFailed() {
	if m == nil {
		return
	}
	m.outboxFailures.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

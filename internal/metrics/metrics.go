// Package metrics exposes Prometheus instrumentation for the API process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"dtalks/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dtalks"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry
	factory  promauto.Factory

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		factory:  factory,
		// Labels: method, route (gin full path), status
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
}

// Middleware records one observation per request. Unmatched routes share
// the "unmatched" label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// WatchDispatcher exports the dispatcher's delivery counters.
func (m *Metrics) WatchDispatcher(d *notify.Dispatcher) {
	counter := func(name, help string, pick func(published, dropped, failed int64) int64) {
		m.factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(d.Stats()))
		})
	}
	counter("published_total", "Notification events published to the broker",
		func(p, _, _ int64) int64 { return p })
	counter("dropped_total", "Notification events dropped because the queue was full",
		func(_, dr, _ int64) int64 { return dr })
	counter("failed_total", "Notification events the broker rejected",
		func(_, _, f int64) int64 { return f })
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

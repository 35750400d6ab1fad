// Package metrics exposes Prometheus collectors for the draw engine and the
// HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prizedraw"

// Collector holds every collector the service reports. Each Collector owns its
// registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	drawsStarted    *prometheus.CounterVec
	drawsFinalized  *prometheus.CounterVec
	drawsCancelled  *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	rosterResets    prometheus.Counter
	poolSize        prometheus.Gauge
	rosterSize      prometheus.Gauge

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with its own registry, including the Go
// runtime and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		drawsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "started_total",
			Help:      "Draws started, by tier.",
		}, []string{"tier"}),
		drawsFinalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "finalized_total",
			Help:      "Draws committed, by tier.",
		}, []string{"tier"}),
		drawsCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "cancelled_total",
			Help:      "In-progress draws returned to idle, by tier.",
		}, []string{"tier"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "rejections_total",
			Help:      "Operations refused by a precondition, by operation and reason.",
		}, []string{"operation", "reason"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "persist_failures_total",
			Help:      "Best-effort state writes that failed, by state part.",
		}, []string{"part"}),
		rosterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "resets_total",
			Help:      "Roster replacements.",
		}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "draw",
			Name:      "pool_size",
			Help:      "Names not yet drawn into any tier.",
		}),
		rosterSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "size",
			Help:      "Names in the current roster.",
		}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "path"}),
	}

	c.registry.MustRegister(
		c.drawsStarted,
		c.drawsFinalized,
		c.drawsCancelled,
		c.rejections,
		c.persistFailures,
		c.rosterResets,
		c.poolSize,
		c.rosterSize,
		c.httpInFlight,
		c.httpRequests,
		c.httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) DrawStarted(tier string)   { c.drawsStarted.WithLabelValues(tier).Inc() }
func (c *Collector) DrawFinalized(tier string) { c.drawsFinalized.WithLabelValues(tier).Inc() }
func (c *Collector) DrawCancelled(tier string) { c.drawsCancelled.WithLabelValues(tier).Inc() }
func (c *Collector) RosterReset()              { c.rosterResets.Inc() }

// Rejected counts an operation refused by a precondition
func (c *Collector) Rejected(operation, reason string) {
	c.rejections.WithLabelValues(operation, reason).Inc()
}

// PersistFailed counts a failed write of one part of the state
func (c *Collector) PersistFailed(part string) {
	c.persistFailures.WithLabelValues(part).Inc()
}

// SetSizes records the current roster and pool sizes
func (c *Collector) SetSizes(roster, pool int) {
	c.rosterSize.Set(float64(roster))
	c.poolSize.Set(float64(pool))
}

// GinMiddleware records request counts and latency. The route template is
// used as the path label so path parameters don't explode cardinality.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if strings.HasSuffix(ctx.Request.URL.Path, "/metrics") {
			ctx.Next()
			return
		}

		start := time.Now()
		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := strings.ToUpper(ctx.Request.Method)
		c.httpRequests.WithLabelValues(method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

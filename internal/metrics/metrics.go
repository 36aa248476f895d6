package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	sharesCreated   *prometheus.CounterVec
	sharesResolved  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		sharesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_shares_created_total",
				Help: "Share links created, by share type.",
			},
			[]string{"type"},
		),
		sharesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_shares_resolved_total",
				Help: "Share links opened, by share type.",
			},
			[]string{"type"},
		),
	}
	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration, m.sharesCreated, m.sharesResolved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

const unmatchedPath = "unmatched"

// Middleware records request count and latency labelled by route pattern.
// Requests to /metrics are not counted.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" || path == "/api/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = unmatchedPath
		}
		start := time.Now()
		c.Next()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		m.requestCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) ShareCreated(shareType string) {
	m.sharesCreated.WithLabelValues(shareType).Inc()
}

func (m *Metrics) ShareResolved(shareType string) {
	m.sharesResolved.WithLabelValues(shareType).Inc()
}

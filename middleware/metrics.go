package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpLatencyMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Metrics returns a Gin middleware that records request counts and latency.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsMetric.WithLabelValues(method, path, status).Inc()
		httpLatencyMetric.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
)

// Metrics records per-request counters, latency, and the in-flight gauge.
// Routes are labelled with the registered pattern, not the raw URL, to keep
// label cardinality bounded.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		m.HTTPActiveRequests.WithLabelValues(method, path).Inc()
		start := time.Now()

		c.Next()

		m.HTTPActiveRequests.WithLabelValues(method, path).Dec()
		prometheus.RecordHTTPRequest(m, method, path, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emanchez/analytics-app/metrics"
)

// MetricsMiddleware counts every request by method, route and status.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// FullPath is the registered route pattern, so the label set
		// stays bounded no matter what clients request.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsProcessed.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

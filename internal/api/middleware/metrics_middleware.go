package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-service/folio_service/pkg/metrics"
)

// Metrics records request counts and latencies per route. The template
// path keeps cardinality bounded regardless of path parameters.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

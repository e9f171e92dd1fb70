package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopcart/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that hit no registered route, keeping the
// route label bounded
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count, latency and in-flight requests per
// route pattern. A nil metrics disables collection.
func HTTPMetrics(metrics *telemetry.Metrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		done := metrics.RequestStarted()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		done(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vpms/internal/observability"
)

// HTTPMetrics records request counts and latency per route template.
func HTTPMetrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

package config

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// PerformanceLogger logs every request with its latency and flags the ones
// slower than threshold.
func PerformanceLogger(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		log.Printf("[PERF] %s %s | Status: %d | Time: %v",
			c.Request.Method,
			route,
			c.Writer.Status(),
			latency)

		if threshold > 0 && latency > threshold {
			log.Printf("[PERF] SLOW REQUEST: %s %s took %v (company %v)",
				c.Request.Method, route, latency, c.GetString("companyId"))
		}
	}
}

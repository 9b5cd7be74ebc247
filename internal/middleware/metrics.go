package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
)

const unmatchedRoute = "unmatched"

// Health and scrape endpoints are not observed.
var unobservedRoutes = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// Metrics observes latency and status per route pattern. Requests that match no route share
// a single label.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if _, skip := unobservedRoutes[route]; skip || metrics == nil {
			c.Next()
			return
		}

		started := time.Now()
		c.Next()

		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(started))
	}
}

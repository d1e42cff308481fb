package middleware

import (
	"strconv"

	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template
func Metrics(metrics coreport.Metrics, timeProvider coreport.TimeProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := timeProvider.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, strconv.Itoa(c.Writer.Status()), timeProvider.Since(start).Std())
	}
}

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"https-examples/internal/logger"
	"https-examples/internal/metrics"
)

// AccessLog writes one structured line per request and counts it.
// m may be nil.
func AccessLog(m *metrics.Metrics) Stage {
	return Stage{
		Name: "access-log",
		Handler: func(c *gin.Context) {
			start := time.Now()
			c.Next()

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			status := c.Writer.Status()

			logger.Info("request", map[string]any{
				"method":      c.Request.Method,
				"path":        c.Request.URL.Path,
				"route":       route,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"client_ip":   c.ClientIP(),
			})

			if m != nil {
				m.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
			}
		},
	}
}

// Recovery turns panics into a 500 and logs them.
func Recovery() Stage {
	return Stage{
		Name: "recovery",
		Handler: gin.CustomRecovery(func(c *gin.Context, err any) {
			logger.Error("panic recovered", map[string]any{
				"path":  c.Request.URL.Path,
				"panic": err,
			})
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
	}
}

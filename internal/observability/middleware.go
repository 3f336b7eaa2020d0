package observability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const unmatchedRoute = "unmatched"

// RequestLogger logs one line per bridge request. Route params such as
// width, addr and slot are attached as fields.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("route", routeOf(c)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start))
		for _, p := range c.Params {
			event = event.Str(p.Key, p.Value)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.Msg("bridge.request")
	}
}

// RequestMetricsMiddleware records request count and latency per route.
// Scrapes of /metrics itself are not counted.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeOf(c)
		if route == "/metrics" {
			return
		}
		RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}

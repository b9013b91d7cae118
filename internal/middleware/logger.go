package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
)

// Logger logs one line per request with the routing outcome, the
// routed clinic, and the latency.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Zerolog().Info()
		if status >= 500 {
			event = log.Zerolog().Error()
		} else if status >= 400 {
			event = log.Zerolog().Warn()
		}

		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP())

		if clinicID := c.GetString(ContextClinicID); clinicID != "" {
			event.Str("clinic_id", clinicID)
		}

		event.Msg("request processed")
	}
}

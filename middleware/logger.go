package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader request correlation header
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id and logs it on completion
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Info()
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Uint("user_id", GetCurrentUserID(c)).
			Str("username", GetCurrentUsername(c)).
			Msg("HTTP request")
	}
}

// GetRequestID id assigned by RequestLogger
func GetRequestID(c *gin.Context) string {
	return c.GetString("requestID")
}

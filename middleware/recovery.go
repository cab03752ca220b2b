package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns panics into a 500 with the usual error envelope
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Str("panic", fmt.Sprintf("%v", recovered)).
			Str("path", c.Request.URL.Path).
			Str("request_id", GetRequestID(c)).
			Msg("panic recovered in HTTP handler")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "error interno del servidor",
		})
	})
}

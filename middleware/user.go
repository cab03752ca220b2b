package middleware

import (
	"errors"
	"net/http"

	"baluarte/database"
	"baluarte/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LoadCurrentUser loads the token's user; a token whose user no longer exists is rejected.
// Must run after JWTAuth.
func LoadCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetCurrentUserID(c)
		if userID == 0 {
			abortUnauthorized(c, "No autorizado, token inválido")
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				abortUnauthorized(c, "No autorizado, usuario no encontrado")
				return
			}
			log.Error().Err(err).
				Uint("user_id", userID).
				Str("request_id", GetRequestID(c)).
				Msg("load current user failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "error interno del servidor",
			})
			return
		}

		c.Set(ctxUser, &user)
		c.Next()
	}
}

// GetCurrentUser user loaded by LoadCurrentUser, nil when absent
func GetCurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// SetCurrentUser attaches a user to the context
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(ctxUserID, user.ID)
	c.Set(ctxUsername, user.Username)
	c.Set(ctxUser, user)
}

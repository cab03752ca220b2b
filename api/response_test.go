package api

import (
	"errors"
	"testing"

	"baluarte/apperr"
	"baluarte/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFail(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		err     error
		status  int
		message string
		detail  string
	}{
		{"validation", "debug", apperr.Validation("Datos inválidos"), 400, "Datos inválidos", ""},
		{"quota", "debug", apperr.QuotaExceeded("Límite alcanzado"), 403, "Límite alcanzado", ""},
		{"internal debug shows cause", "debug", apperr.Internal("error al guardar", errors.New("deadlock")), 500, "error al guardar", "deadlock"},
		{"internal release hides cause", "release", apperr.Internal("error al guardar", errors.New("deadlock")), 500, "error al guardar", ""},
		{"plain error", "release", errors.New("boom"), 500, "error interno del servidor", ""},
		{"upstream", "release", apperr.Upstream(403, "Autorización fallida", errors.New("401")), 403, "Autorización fallida", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: tt.mode}}
			defer func() { config.GlobalConfig = nil }()

			router := newTestRouter()
			router.GET("/", func(c *gin.Context) { Fail(c, tt.err) })

			w := doRequest(router, "GET", "/", "")

			assert.Equal(t, tt.status, w.Code)
			resp := decodeMap(t, w)
			assert.Equal(t, float64(tt.status), resp["code"])
			assert.Equal(t, tt.message, resp["message"])
			if tt.detail == "" {
				assert.NotContains(t, resp, "detail")
			} else {
				assert.Equal(t, tt.detail, resp["detail"])
			}
		})
	}
}

func TestParseID(t *testing.T) {
	router := newTestRouter()
	router.GET("/:id", func(c *gin.Context) {
		id, err := parseID(c, "id")
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, gin.H{"id": id})
	})

	assert.Equal(t, 200, doRequest(router, "GET", "/12", "").Code)
	assert.Equal(t, 400, doRequest(router, "GET", "/0", "").Code)
	assert.Equal(t, 400, doRequest(router, "GET", "/-3", "").Code)
	assert.Equal(t, 400, doRequest(router, "GET", "/doce", "").Code)
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{QuotaExceeded("x"), http.StatusForbidden},
		{Internal("x", nil), http.StatusInternalServerError},
		{Upstream(http.StatusForbidden, "x", nil), http.StatusForbidden},
		{Upstream(http.StatusInternalServerError, "x", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), "kind %d", tt.err.Kind)
	}
}

func TestAs(t *testing.T) {
	assert.Nil(t, As(nil))

	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("load user: %w", Wrap(KindNotFound, "usuario no encontrado", cause))
	e := As(wrapped)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "usuario no encontrado", e.Message)
	assert.ErrorIs(t, e, cause)

	plain := As(cause)
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, http.StatusInternalServerError, plain.Status())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("create: %w", QuotaExceeded("limit"))
	assert.True(t, Is(err, KindQuotaExceeded))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(errors.New("x"), KindInternal))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "solo mensaje", Validation("solo mensaje").Error())
	assert.Equal(t, "fallo: boom", Internal("fallo", errors.New("boom")).Error())
}

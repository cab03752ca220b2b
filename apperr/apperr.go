// Package apperr is the error taxonomy shared by handlers and services.
// Every kind maps to one HTTP status; handlers render them through api.Fail.
package apperr

import (
	"errors"
	"net/http"
)

// Kind error category
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindQuotaExceeded
	KindUpstream
)

// Status HTTP status of the kind
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindQuotaExceeded:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a client-facing message and the internal cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// status overrides Kind.Status, used by upstream errors
	status int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status HTTP status to render
func (e *Error) Status() int {
	if e.status != 0 {
		return e.status
	}
	return e.Kind.Status()
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error    { return newError(KindValidation, msg, nil) }
func Unauthorized(msg string) *Error  { return newError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) *Error     { return newError(KindForbidden, msg, nil) }
func NotFound(msg string) *Error      { return newError(KindNotFound, msg, nil) }
func Conflict(msg string) *Error      { return newError(KindConflict, msg, nil) }
func QuotaExceeded(msg string) *Error { return newError(KindQuotaExceeded, msg, nil) }

// Internal wraps an unexpected failure
func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// Upstream wraps a third-party failure rendered with the given status (403 or 500)
func Upstream(status int, msg string, err error) *Error {
	e := newError(KindUpstream, msg, err)
	e.status = status
	return e
}

// Wrap attaches a cause to a taxonomy error
func Wrap(kind Kind, msg string, err error) *Error { return newError(kind, msg, err) }

// As extracts an *Error from a chain; unknown errors become internal ones
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("error interno del servidor", err)
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Package apperr defines the error kinds shared by the record store, the
// token subsystem and the HTTP layer, and maps them to status codes
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrExpired         = errors.New("token expired")
	ErrRevoked         = errors.New("token revoked")
	ErrUserNotFound    = errors.New("token user not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)

// Error carries a user-visible message next to its kind. errors.Is matches
// the kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}

	return e.Kind.Error() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Status returns the HTTP status code for err
func Status(err error) int {
	switch {
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrRevoked),
		errors.Is(err, ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text that may be shown to the client. Errors without
// a kind never leak their internals.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}

	switch {
	case errors.Is(err, ErrConflict):
		return "Resource already exists"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrExpired):
		return "Authorization token expired. Please log in again"
	case errors.Is(err, ErrRevoked):
		return "Authorization token has been revoked"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrUnauthenticated):
		return "Authorization token invalid"
	case errors.Is(err, ErrForbidden):
		return "Forbidden"
	case errors.Is(err, ErrValidation):
		return "Invalid request"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	default:
		return "Internal server error"
	}
}

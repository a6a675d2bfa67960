// Package apperr defines the domain error type used by the service layer.
// Errors carry the HTTP status the transport layer should respond with, so
// handlers never need to inspect error strings.
package apperr

import (
	"errors"
	"net/http"
)

// Error is an explicit domain failure with an attached HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an arbitrary status code.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }
func Unavailable(message string) *Error  { return New(http.StatusServiceUnavailable, message) }

// Status returns the HTTP status carried by err, or 500 when err is not an
// *Error. Unknown errors must not leak internals to the client.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether err is a domain error with the given status.
func Is(err error, status int) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == status
}

package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-account-service/internal/apperr"
)

// FieldError carries a per-field validation message.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIResponse is the uniform envelope for every endpoint, success or
// failure.
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	Meta    Meta         `json:"meta"`
}

// Meta holds response metadata common to all envelopes.
type Meta struct {
	Timestamp string `json:"timestamp"`
}

func meta() Meta {
	return Meta{Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta(),
	})
}

// respondErr maps any error to the error envelope. Domain errors carry their
// own status; anything else is a 500 whose detail is suppressed unless the
// service runs in development mode.
func respondErr(c echo.Context, err error, dev bool) error {
	status := apperr.Status(err)
	msg := "Internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	} else if dev {
		msg = err.Error()
	}
	return c.JSON(status, APIResponse{
		Success: false,
		Message: msg,
		Errors:  []FieldError{{Message: msg}},
		Meta:    meta(),
	})
}

// respondInvalid reports request-body validation failures with field-level
// detail before anything reaches the core.
func respondInvalid(c echo.Context, errs ...FieldError) error {
	return c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
		Meta:    meta(),
	})
}

// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"fuelstation/internal/service"

	"gorm.io/gorm"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// FromError maps a service error to its status and envelope. Validation and
// lifecycle errors carry a message for the operator; anything unexpected
// becomes a generic 500.
func FromError(err error) (int, *APIError) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, New(err.Error())
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, New(err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, New(err.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, New("Record already exists")
	default:
		return http.StatusInternalServerError, New("Internal server error")
	}
}

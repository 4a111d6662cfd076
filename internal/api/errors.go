package api

import (
	"errors"
	"net/http"

	"kotoba/internal/domain"
	"kotoba/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error types
// or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrSetNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrOrderNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrSetExists):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidSessionMode):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrSetNotFound):
		return "set not found"
	case errors.Is(err, store.ErrSessionNotFound):
		return "session not found"
	case errors.Is(err, store.ErrOrderNotFound):
		return "no saved card order"
	case errors.Is(err, store.ErrSetExists):
		return "set already exists"
	case errors.Is(err, domain.ErrInvalidSessionMode):
		return "invalid session mode"
	case errors.Is(err, store.ErrInvalidEntity), errors.Is(err, domain.ErrValidation):
		return "invalid request"
	default:
		return "internal server error"
	}
}

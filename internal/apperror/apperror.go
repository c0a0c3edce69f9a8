// Package apperror defines the error taxonomy shared by every layer.
//
// Each AppError wraps a sentinel. Category sentinels (ErrValidation,
// ErrNotFound, ...) decide the HTTP status; domain sentinels such as
// ErrAlreadyLiked wrap a category, so errors.Is matches both:
//
//	errors.Is(err, apperror.ErrAlreadyLiked) // true
//	errors.Is(err, apperror.ErrConflict)     // also true
package apperror

import (
	"errors"
	"fmt"
)

// Category sentinels.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Domain sentinels. Each one wraps exactly one category.
var (
	ErrSelfReference     = fmt.Errorf("self reference: %w", ErrValidation)
	ErrAlreadyFollowing  = fmt.Errorf("already following: %w", ErrConflict)
	ErrNotFollowing      = fmt.Errorf("not following: %w", ErrValidation)
	ErrAlreadyLiked      = fmt.Errorf("already liked: %w", ErrConflict)
	ErrLikeNotFound      = fmt.Errorf("like not found: %w", ErrNotFound)
	ErrInvalidCredential = fmt.Errorf("invalid credential: %w", ErrUnauthorized)
	ErrUnknownIdentity   = fmt.Errorf("unknown identity: %w", ErrUnauthorized)
)

type AppError struct {
	Err     error  // sentinel, category or domain
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New wraps any sentinel with a client-facing message.
func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, detail string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, detail),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for a failed authentication step.
func Unauthorized(sentinel error, message string) *AppError {
	if sentinel == nil {
		sentinel = ErrUnauthorized
	}
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

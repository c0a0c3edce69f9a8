package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("content", "content is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "alice"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "AlreadyLiked matches its own sentinel",
			err:       New(ErrAlreadyLiked, "you already liked this post"),
			target:    ErrAlreadyLiked,
			wantMatch: true,
		},
		{
			name:      "AlreadyLiked is a conflict",
			err:       New(ErrAlreadyLiked, "you already liked this post"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "LikeNotFound is a not found",
			err:       New(ErrLikeNotFound, "like not found"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "SelfReference is a validation error",
			err:       New(ErrSelfReference, "you cannot follow yourself"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "UnknownIdentity is unauthorized",
			err:       Unauthorized(ErrUnknownIdentity, "user no longer exists"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped twice still matches",
			err:       fmt.Errorf("service: %w", New(ErrAlreadyFollowing, "already following")),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "AlreadyLiked does NOT match LikeNotFound",
			err:       New(ErrAlreadyLiked, "x"),
			target:    ErrLikeNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("post", "abc123"),
			wantMessage: "post not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("content", "content is required"),
			wantMessage: "content is required",
		},
		{
			name:        "Conflict message includes resource and detail",
			err:         Conflict("user", "username or email already registered"),
			wantMessage: "user already exists: username or email already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.err.Error())
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("post", "abc123")
	assert.Equal(t, ErrNotFound, err.Unwrap())
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("email", "invalid email format")
	assert.Equal(t, "email", err.Field)
}

func TestUnauthorizedDefaultsSentinel(t *testing.T) {
	err := Unauthorized(nil, "valid authentication required")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/service"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation", apperror.ValidationFailed("x", "bad"), http.StatusBadRequest, "validation_error"},
		{"self reference", apperror.New(apperror.ErrSelfReference, "no"), http.StatusBadRequest, "validation_error"},
		{"not following", apperror.New(apperror.ErrNotFollowing, "no"), http.StatusBadRequest, "validation_error"},
		{"conflict", apperror.Conflict("user", "taken"), http.StatusBadRequest, "conflict"},
		{"already liked", apperror.New(apperror.ErrAlreadyLiked, "dup"), http.StatusBadRequest, "conflict"},
		{"already following", apperror.New(apperror.ErrAlreadyFollowing, "dup"), http.StatusBadRequest, "conflict"},
		{"unauthorized", apperror.Unauthorized(apperror.ErrInvalidCredential, "no"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("not yours"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("post", "p1"), http.StatusNotFound, "not_found"},
		{"like not found", apperror.New(apperror.ErrLikeNotFound, "gone"), http.StatusNotFound, "not_found"},
		{"wrapped", fmt.Errorf("service: %w", apperror.NotFound("user", "u1")), http.StatusNotFound, "not_found"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestWriteError_Validation(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)

	writeError(rr, req, discard, apperror.ValidationFailed("content", "content is required"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "content is required", body.Message)
	assert.Equal(t, "content", body.Field)
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)

	writeError(rr, req, discard, errors.New("sqlite: no such table: posts"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "sqlite")

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "internal_error", body.Error)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var dst postRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
		require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "hi", dst.Content)
	})

	t.Run("empty body", func(t *testing.T) {
		var dst postRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		err := decodeJSON(httptest.NewRecorder(), req, &dst)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("malformed", func(t *testing.T) {
		var dst postRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
		err := decodeJSON(httptest.NewRecorder(), req, &dst)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query string
		page  int
		limit int
	}{
		{"", service.DefaultPage, service.DefaultPageLimit},
		{"?page=3&limit=5", 3, 5},
		{"?page=abc&limit=-2", service.DefaultPage, service.DefaultPageLimit},
		{"?limit=1000", service.DefaultPage, service.MaxPageLimit},
		{"?page=" + strconv.Itoa(math.MaxInt) + "&limit=100", math.MaxInt / 100, 100},
		{"?page=99999999999999999999", service.DefaultPage, service.DefaultPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/posts"+tt.query, nil)
			got := pageFromQuery(req)
			assert.Equal(t, tt.page, got.Page)
			assert.Equal(t, tt.limit, got.Limit)
			assert.GreaterOrEqual(t, got.Offset(), 0)
		})
	}
}

func TestIsMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	assert.True(t, isMultipart(req))

	req.Header.Set("Content-Type", "application/json")
	assert.False(t, isMultipart(req))
}

package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//   {"error": "not_found", "message": "post not found with id abc123"}
//
// Validation errors also name the offending field:
//   {"error": "validation_error", "message": "...", "field": "username"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/auth"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/service"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Set for validation errors
}

// MessageResponse acknowledges an operation that returns no resource.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps an error onto its HTTP status and machine-readable kind.
//
// Domain sentinels wrap exactly one category, so matching on categories
// covers them too: ErrAlreadyLiked is a Conflict, ErrLikeNotFound a
// NotFound. Conflicts are reported as 400, not 409.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it.
//
// Anything that is not an *apperror.AppError is an unexpected failure: the
// client gets a generic 500 and the real error is logged with the request
// ID so an operator can find it. The raw message might contain SQL or file
// paths, so it is never sent.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, kind := statusFor(err)
		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{
				Error:   kind,
				Message: appErr.Message,
				Field:   appErr.Field,
			})
			return
		}
	}

	logger.Error("request failed",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst. A malformed or oversized body is a
// validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", "request body must be valid JSON")
	}
	return nil
}

// actor returns the authenticated user's ID. Every route that calls it is
// behind auth.Gate.RequireAuth, so a missing user means a wiring mistake.
func actor(r *http.Request) (string, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized(nil, "authentication required")
	}
	return user.ID, nil
}

// pageFromQuery reads ?page=&limit=. Missing or malformed values fall back
// to the defaults.
func pageFromQuery(r *http.Request) model.PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return service.NewPage(page, limit)
}

// isMultipart reports whether the request carries a multipart form.
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// formImage parses a multipart body capped at limit bytes and returns the
// "image" part, or nil when the form has none. The caller closes it.
func formImage(w http.ResponseWriter, r *http.Request, limit int64) (multipart.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.ValidationFailed("image", "upload is too large")
		}
		return nil, apperror.ValidationFailed("body", "malformed multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, apperror.ValidationFailed("image", "could not read uploaded image")
	}
	return file, nil
}

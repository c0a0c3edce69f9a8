// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the store
//
// Services take repository interfaces, never a concrete *sqlite.DB or
// *mongodb.Store, so either backend (or a fake in tests) plugs in.
//
// IDENTITY IS AN ARGUMENT:
// No service reads the caller from a shared request object. Handlers take
// the authenticated user out of the context once and pass actorID to every
// method that needs to know who is acting.
//
// MULTI-STEP WRITES:
// Likes, comments and follows are each two independent writes (record, then
// counter or second set). They are not wrapped in a transaction: a failure
// or a racing request between the two steps can leave a counter off by one
// or an edge recorded on one side only. Nothing reconciles this afterwards.
package service

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/content"
	"github.com/sakif/minisocial/internal/model"
)

// Validation limits.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
	MaxNameLength     = 50
	MaxBioLength      = 500
	MaxPostLength     = 1000
	MaxCommentLength  = 500

	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// validate checks single values against validator tags. String min/max
// count runes, not bytes.
var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs tag against v and reports failure as a validation error on
// field.
func check(field, message string, v any, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		return apperror.ValidationFailed(field, message)
	}
	return nil
}

// ImageStore saves an uploaded image and returns its public reference.
// *upload.Store satisfies it.
type ImageStore interface {
	SaveImage(r io.Reader) (string, error)
}

// NewPage applies the list defaults: page 1, limit 10, limit capped at 100.
// page is capped at math.MaxInt/limit so the offset always fits in an int.
func NewPage(page, limit int) model.PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return model.PageRequest{Page: page, Limit: limit}
}

// requireText cleans s and checks it is present and at most max runes.
func requireText(field, label, s string, max int) (string, error) {
	s = content.Clean(s)
	if err := check(field, fmt.Sprintf("%s is required", label), s, "required"); err != nil {
		return "", err
	}
	if err := check(field, fmt.Sprintf("%s must be %d characters or less", label, max),
		s, fmt.Sprintf("max=%d", max)); err != nil {
		return "", err
	}
	return s, nil
}

// optionalText cleans s and checks it is at most max runes. Empty is fine.
func optionalText(field, label, s string, max int) (string, error) {
	s = content.Clean(s)
	if err := check(field, fmt.Sprintf("%s must be %d characters or less", label, max),
		s, fmt.Sprintf("max=%d", max)); err != nil {
		return "", err
	}
	return s, nil
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if err := check("username",
		fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength),
		username, fmt.Sprintf("min=%d,max=%d", MinUsernameLength, MaxUsernameLength)); err != nil {
		return "", err
	}
	return username, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if err := check("email", "email is required", email, "required"); err != nil {
		return "", err
	}
	if err := check("email", "please enter a valid email", email, "email"); err != nil {
		return "", err
	}
	return email, nil
}

func validatePassword(field, password string) error {
	return check(field, fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		password, fmt.Sprintf("min=%d", MinPasswordLength))
}

// renderPost fills the derived HTML body.
func renderPost(p *model.Post) *model.Post {
	p.ContentHTML = content.Render(p.Content)
	return p
}

func renderComment(c *model.Comment) *model.Comment {
	c.ContentHTML = content.Render(c.Content)
	return c
}

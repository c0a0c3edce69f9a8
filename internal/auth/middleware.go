package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. A plain string key could be
// read or shadowed by any package that knows the string. Only this package
// can create a key of type contextKey.
type contextKey string

const userKey contextKey = "user"

// IdentityLoader is the single read the gate needs from storage.
// repository.UserRepository satisfies it.
type IdentityLoader interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Gate is the authorization gate for protected routes. A request is either
// rejected, or continues with its user attached; there is no partial state
// and nothing is cached between requests.
type Gate struct {
	tokens *TokenService
	users  IdentityLoader
	logger *slog.Logger
}

func NewGate(tokens *TokenService, users IdentityLoader, logger *slog.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, logger: logger}
}

// LoadIdentity resolves a verified user ID to the user record with the
// password hash cleared. A user deleted after the token was issued yields
// apperror.ErrUnknownIdentity.
func (g *Gate) LoadIdentity(ctx context.Context, userID string) (*model.User, error) {
	user, err := g.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(apperror.ErrUnknownIdentity, "user no longer exists")
		}
		return nil, err
	}

	// copy so the caller's record keeps its hash
	u := *user
	u.PasswordHash = ""
	return &u, nil
}

// Authenticate runs both steps for one Authorization header value.
func (g *Gate) Authenticate(ctx context.Context, header string) (*model.User, error) {
	token, err := bearerToken(header)
	if err != nil {
		return nil, err
	}

	userID, err := g.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized(apperror.ErrInvalidCredential, "token is not valid")
	}

	return g.LoadIdentity(ctx, userID)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <jwt>", validates it, loads the user and
// stores that user in the request context. On ANY failure it answers 401
// and the downstream handler never runs.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... before ...
//	        next.ServeHTTP(w, r)
//	        // ... after ...
//	    })
//	}
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			message := "authentication failed"
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				message = appErr.Message
			} else {
				// store failure while loading the identity: still a 401
				g.logger.Error("loading identity failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
			}
			writeUnauthorized(w, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// WithUser returns a copy of ctx carrying user. RequireAuth is the only
// production caller; tests use it to fake an authenticated request.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Handlers call it once and pass the user's ID on explicitly:
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // not behind RequireAuth
//	}
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperror.Unauthorized(apperror.ErrInvalidCredential, "no token provided")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", apperror.Unauthorized(apperror.ErrInvalidCredential, "authorization header must be Bearer <token>")
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

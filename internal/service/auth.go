package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/auth"
	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/repository"
)

// AuthService handles registration and login.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler
// can respond in one step. User never carries the password hash.
type AuthResult struct {
	User  *model.User
	Token string
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register validates the input, rejects a taken username or email, stores
// the user with a bcrypt hash and issues a token.
//
// The UserExists pre-check gives the friendly error; the store's unique
// indexes still catch two registrations racing past it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username, err := validateUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword("password", in.Password); err != nil {
		return nil, err
	}
	firstName, err := requireText("firstName", "first name", in.FirstName, MaxNameLength)
	if err != nil {
		return nil, err
	}
	lastName, err := requireText("lastName", "last name", in.LastName, MaxNameLength)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking existing user: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("user", "username or email already registered")
	}

	hash, _, err := s.passwords.HashIfChanged(in.Password, "")
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Profile:      model.Profile{FirstName: firstName, LastName: lastName},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// Login checks email + password. An unknown email and a wrong password
// produce the same error so callers cannot probe which emails exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	invalid := apperror.Unauthorized(apperror.ErrInvalidCredential, "invalid email or password")

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, apperror.ErrInvalidCredential) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	u := *user
	u.PasswordHash = ""
	return &AuthResult{User: &u, Token: token}, nil
}

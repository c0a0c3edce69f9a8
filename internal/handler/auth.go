package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/minisocial/internal/model"
	"github.com/sakif/minisocial/internal/service"
)

// AuthHandler serves the two public endpoints: register and login.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account and return a token
//   - HandleLogin    → exchange email + password for a token
//
// Both respond with the same shape so a client can treat them alike:
//
//	{"message": "...", "token": "<jwt>", "user": {"id": ..., "username": ..., "email": ..., "profile": {...}}}
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountResponse is the public account view returned after auth.
type accountResponse struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email"`
	Profile  model.Profile `json:"profile"`
}

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    accountResponse `json:"user"`
}

func newAuthResponse(message string, result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Message: message,
		Token:   result.Token,
		User: accountResponse{
			ID:       result.User.ID,
			Username: result.User.Username,
			Email:    result.User.Email,
			Profile:  result.User.Profile,
		},
	}
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// Success: 201 Created
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAuthResponse("User registered successfully", result))
}

// HandleLogin authenticates by email and password.
//
// HTTP: POST /api/auth/login
// Success: 200 OK. An unknown email and a wrong password both give the
// same 401 so the response does not reveal which accounts exist.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse("Login successful", result))
}

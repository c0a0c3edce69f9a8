package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/minisocial/internal/apperror"
	"github.com/sakif/minisocial/internal/service"
)

// formOverhead is headroom on top of the image limit for the multipart
// boundaries and text fields sharing the body.
const formOverhead = 64 << 10

// UserHandler serves profiles, follows and account changes. Every route is
// authenticated.
type UserHandler struct {
	users         *service.UserService
	relationships *service.RelationshipService
	maxUpload     int64
	logger        *slog.Logger
}

func NewUserHandler(
	users *service.UserService,
	relationships *service.RelationshipService,
	maxUpload int64,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:         users,
		relationships: relationships,
		maxUpload:     maxUpload,
		logger:        logger,
	}
}

type updateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleMe returns the caller's own profile.
//
// HTTP: GET /api/users/profile
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.writeProfile(w, r, actorID)
}

// HandleGetByID returns any user's profile.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, chi.URLParam(r, "id"))
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	view, err := h.users.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleUpdateProfile edits the caller's names and bio. Omitted fields are
// left as they are.
//
// HTTP: PUT /api/users/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	view, err := h.users.UpdateProfile(r.Context(), actorID, service.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleChangePassword
//
// HTTP: PUT /api/users/password
func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), actorID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}

// HandleUploadAvatar replaces the caller's profile photo.
//
// HTTP: POST /api/users/profile/avatar (multipart, field "image")
func (h *UserHandler) HandleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if !isMultipart(r) {
		writeError(w, r, h.logger, apperror.ValidationFailed("image", "avatar must be sent as multipart/form-data"))
		return
	}

	file, err := formImage(w, r, h.maxUpload+formOverhead)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if file == nil {
		writeError(w, r, h.logger, apperror.ValidationFailed("image", "an image file is required"))
		return
	}
	defer file.Close()

	view, err := h.users.SetAvatar(r.Context(), actorID, file)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleFollow makes the caller follow {id}.
//
// HTTP: POST /api/users/{id}/follow
// Errors: 400 for self-follow or an existing follow, 404 for an unknown user.
func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.relationships.Follow(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User followed successfully"})
}

// HandleUnfollow removes the follow edge from the caller to {id}.
//
// HTTP: POST /api/users/{id}/unfollow
func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.relationships.Unfollow(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "User unfollowed successfully"})
}

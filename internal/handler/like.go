package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/minisocial/internal/service"
)

// LikeHandler likes and unlikes posts and comments. All four routes answer
// with the target's likesCount after the change.
type LikeHandler struct {
	engagement *service.EngagementService
	logger     *slog.Logger
}

func NewLikeHandler(engagement *service.EngagementService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{engagement: engagement, logger: logger}
}

// LikeResponse is the body of every like endpoint.
type LikeResponse struct {
	Message string `json:"message"`
	*service.LikeResult
}

type likeOp func(ctx context.Context, actorID, targetID string) (*service.LikeResult, error)

// serve runs op against the {param} URL parameter.
func (h *LikeHandler) serve(w http.ResponseWriter, r *http.Request, param, message string, op likeOp) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := op(r.Context(), actorID, chi.URLParam(r, param))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{Message: message, LikeResult: result})
}

// HandleLikePost
//
// HTTP: POST /api/likes/post/{postId}
// Errors: 400 if already liked, 404 if the post does not exist.
func (h *LikeHandler) HandleLikePost(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "postId", "Post liked successfully", h.engagement.LikePost)
}

// HandleUnlikePost
//
// HTTP: DELETE /api/likes/post/{postId}
// Errors: 404 if the post or the like does not exist.
func (h *LikeHandler) HandleUnlikePost(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "postId", "Post unliked successfully", h.engagement.UnlikePost)
}

// HandleLikeComment
//
// HTTP: POST /api/likes/comment/{commentId}
func (h *LikeHandler) HandleLikeComment(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "commentId", "Comment liked successfully", h.engagement.LikeComment)
}

// HandleUnlikeComment
//
// HTTP: DELETE /api/likes/comment/{commentId}
func (h *LikeHandler) HandleUnlikeComment(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "commentId", "Comment unliked successfully", h.engagement.UnlikeComment)
}

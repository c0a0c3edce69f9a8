package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/minisocial/internal/service"
)

// CommentHandler handles comments on posts.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Content string `json:"content"`
}

// HandleCreate adds a comment to {postId} and bumps the post's comment count.
//
// HTTP: POST /api/comments/{postId}
// Success: 201 Created
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), actorID, chi.URLParam(r, "postId"), req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleList
//
// HTTP: GET /api/comments/{postId}?page=1&limit=10
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.comments.List(r.Context(), chi.URLParam(r, "postId"), pageFromQuery(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleUpdate edits the caller's own comment.
//
// HTTP: PUT /api/comments/{id}
func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), actorID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleDelete removes the caller's own comment.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.comments.Delete(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted successfully"})
}

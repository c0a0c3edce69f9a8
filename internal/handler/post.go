package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/minisocial/internal/service"
)

// PostHandler handles HTTP requests for posts.
//
// HANDLER RESPONSIBILITIES:
//   - Parse the request (URL params, JSON or multipart body, query string)
//   - Call the service
//   - Map the result or error onto an HTTP response
//
// Ownership checks live in the service; the handler only supplies the
// caller's ID.
type PostHandler struct {
	posts     *service.PostService
	maxUpload int64
	logger    *slog.Logger
}

func NewPostHandler(posts *service.PostService, maxUpload int64, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, maxUpload: maxUpload, logger: logger}
}

type postRequest struct {
	Content string `json:"content"`
}

// HandleCreate publishes a post.
//
// HTTP: POST /api/posts
// Body: JSON {"content": "..."}, or multipart with a "content" field and an
// optional "image" file.
// Success: 201 Created with the post and its author summary.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var (
		text  string
		image io.Reader
	)
	if isMultipart(r) {
		file, err := formImage(w, r, h.maxUpload+formOverhead)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		if file != nil {
			defer file.Close()
			image = file
		}
		text = r.FormValue("content")
	} else {
		var req postRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		text = req.Content
	}

	post, err := h.posts.Create(r.Context(), actorID, text, image)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleList pages through every post, newest first.
//
// HTTP: GET /api/posts?page=1&limit=10
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleListByUser pages through one author's posts.
//
// HTTP: GET /api/posts/user/{userId}?page=1&limit=10
func (h *PostHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.ListByUser(r.Context(), chi.URLParam(r, "userId"), pageFromQuery(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGetByID
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleUpdate edits the caller's own post.
//
// HTTP: PUT /api/posts/{id}
// Errors: 403 when the caller is not the author.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.posts.Update(r.Context(), actorID, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes the caller's own post.
//
// HTTP: DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actorID, err := actor(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.posts.Delete(r.Context(), actorID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted successfully"})
}

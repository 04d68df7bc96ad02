package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
	log            logrus.FieldLogger
}

func NewCommentHandler(commentService *service.CommentService, log logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		log:            log,
	}
}

// Create handles POST /comments/post/:postId
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), chi.URLParam(r, "postId"), userID, req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// List handles GET /comments/post/:postId, newest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	comments, err := h.commentService.List(r.Context(), chi.URLParam(r, "postId"), viewerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, comments)
}

// ToggleLike handles POST /comments/:id/like
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.commentService.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /comments/:id (owner only).
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.commentService.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete comment")
		return
	}

	httputil.WriteMessage(w, "Comment deleted successfully")
}

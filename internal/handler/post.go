package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
	"socialnet/internal/service"
	"socialnet/internal/storage"
	"socialnet/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
	log         logrus.FieldLogger
}

func NewPostHandler(postService *service.PostService, log logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		postService: postService,
		log:         log,
	}
}

// Create handles POST /posts
// Accepts multipart form data (content, tags, optional image) or a JSON body.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	var image *storage.Upload
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req.Content = r.FormValue("content")
		form := r.MultipartForm.Value
		req.Tags = parseTags(append(form["tags"], form["tags[]"]...))

		upload, closeFile, err := formUpload(r, "image")
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid image upload")
			return
		}
		defer closeFile()
		image = upload
	} else if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req, image)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// Feed handles GET /posts/feed: the caller's posts and those of followed users.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.postService.Feed(r.Context(), userID, pageFromQuery(r))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// ListAll handles GET /posts/all. Anonymous callers see isLiked=false everywhere.
func (h *PostHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.postService.ListAll(r.Context(), viewerID, pageFromQuery(r))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetByID handles GET /posts/:id
// Returns a single post with its comments.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	post, err := h.postService.Get(r.Context(), chi.URLParam(r, "id"), viewerID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Update handles PUT /posts/:id (owner only).
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdatePostRequest
	var image *storage.Upload
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req.Content = r.FormValue("content")

		upload, closeFile, err := formUpload(r, "image")
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid image upload")
			return
		}
		defer closeFile()
		image = upload
	} else if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.postService.Update(r.Context(), chi.URLParam(r, "id"), userID, req, image)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /posts/:id
// Removes the post with its comments and likes (only owner can delete).
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.postService.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete post")
		return
	}

	httputil.WriteMessage(w, "Post deleted successfully")
}

// ToggleLike handles POST /posts/:id/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

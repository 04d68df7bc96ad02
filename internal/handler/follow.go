package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"socialnet/internal/httputil"
	"socialnet/internal/service"
	"socialnet/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	log           logrus.FieldLogger
}

func NewFollowHandler(followService *service.FollowService, log logrus.FieldLogger) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		log:           log,
	}
}

// Follow handles POST /users/follow/:id
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.followService.Follow(r.Context(), followerID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "Failed to follow user")
		return
	}

	httputil.WriteMessage(w, "Successfully followed user")
}

// Unfollow handles POST /users/unfollow/:id. Unfollowing someone not followed succeeds.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "Failed to unfollow user")
		return
	}

	httputil.WriteMessage(w, "Successfully unfollowed user")
}

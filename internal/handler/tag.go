package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"socialnet/internal/httputil"
	"socialnet/internal/service"
)

type TagHandler struct {
	tagService *service.TagService
	log        logrus.FieldLogger
}

func NewTagHandler(tagService *service.TagService, log logrus.FieldLogger) *TagHandler {
	return &TagHandler{tagService: tagService, log: log}
}

// List handles GET /tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.List(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list tags")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tags)
}

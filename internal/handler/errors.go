package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
)

// badRequestErrors are domain errors whose message is safe to show as-is.
var badRequestErrors = []error{
	model.ErrContentRequired,
	model.ErrContentTooLong,
	model.ErrTooManyTags,
	model.ErrUnknownTag,
	model.ErrCannotFollowSelf,
	model.ErrNoFile,
}

// writeServiceError maps a service error onto the error envelope.
// Anything unrecognised is logged and reported as a generic 500 with fallback as message.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error, fallback string) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		httputil.WriteBadRequest(w, validationErr.Message)
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds 5MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, model.ErrInvalidImageType.Error())
	case isBadRequest(err):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, model.ErrNotPostOwner):
		httputil.WriteForbidden(w, "You can only modify your own posts")
	case errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "You can only delete your own comments")
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrUsernameExists),
		errors.Is(err, model.ErrEmailExists),
		errors.Is(err, model.ErrAlreadyFollowing):
		httputil.WriteConflict(w, err.Error())
	default:
		log.WithError(err).Error(fallback)
		httputil.WriteInternalError(w, fallback)
	}
}

func isBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

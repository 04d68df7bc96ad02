package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/httputil"
	"socialnet/internal/model"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"repeated fields", []string{"a", "b"}, []string{"a", "b"}},
		{"comma list", []string{" a, b ,,c "}, []string{"a", "b", "c"}},
		{"json array", []string{`["a", " b "]`}, []string{"a", "b"}},
		{"mixed", []string{`["a"]`, "b,c"}, []string{"a", "b", "c"}},
		{"empty", []string{"", "  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTags(tt.values))
		})
	}
}

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		query string
		want  model.Page
	}{
		{"", model.Page{Page: 1, Limit: 10}},
		{"?page=3&limit=5", model.Page{Page: 3, Limit: 5}},
		{"?page=abc&limit=-1", model.Page{Page: 1, Limit: 10}},
		{"?limit=1000", model.Page{Page: 1, Limit: model.MaxPageLimit}},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/posts/all"+tt.query, nil)
		assert.Equal(t, tt.want, pageFromQuery(r), tt.query)
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{&model.ValidationError{Message: "email is required"}, http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{model.ErrContentTooLong, http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{fmt.Errorf("resolve: %w", model.ErrUnknownTag), http.StatusBadRequest, httputil.ErrCodeBadRequest},
		{model.ErrFileTooLarge, http.StatusBadRequest, model.CodeFileTooLarge},
		{model.ErrInvalidImageType, http.StatusBadRequest, model.CodeInvalidImageType},
		{model.ErrInvalidCredentials, http.StatusUnauthorized, httputil.ErrCodeUnauthorized},
		{model.ErrNotPostOwner, http.StatusForbidden, httputil.ErrCodeForbidden},
		{model.ErrNotCommentOwner, http.StatusForbidden, httputil.ErrCodeForbidden},
		{model.ErrPostNotFound, http.StatusNotFound, httputil.ErrCodeNotFound},
		{model.ErrUserNotFound, http.StatusNotFound, httputil.ErrCodeNotFound},
		{model.ErrAlreadyFollowing, http.StatusBadRequest, httputil.ErrCodeConflict},
		{model.ErrEmailExists, http.StatusBadRequest, httputil.ErrCodeConflict},
		{model.ErrUsernameExists, http.StatusBadRequest, httputil.ErrCodeConflict},
		{errors.New("connection reset"), http.StatusInternalServerError, httputil.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			log, hook := logtest.NewNullLogger()
			rec := httptest.NewRecorder()

			writeServiceError(rec, log, tt.err, "Failed to do the thing")

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)

			if tt.wantStatus == http.StatusInternalServerError {
				// Internal details are logged, never returned.
				assert.Equal(t, "Failed to do the thing", body.Error.Message)
				require.Len(t, hook.AllEntries(), 1)
			} else {
				assert.Empty(t, hook.AllEntries())
			}
		})
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		body     string
		recorded bool
	}{
		{"validation", &service.ValidationError{Msg: "title is required"}, http.StatusBadRequest, "title is required", false},
		{"forbidden message", &service.ForbiddenError{Msg: "only the owner"}, http.StatusForbidden, "only the owner", false},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden", false},
		{"not found wrapped", fmt.Errorf("load: %w", service.ErrNotFound), http.StatusNotFound, "not found", false},
		{"email taken", service.ErrEmailTaken, http.StatusConflict, "User already exists", false},
		{"conflict", service.ErrConflict, http.StatusConflict, "already exists", false},
		{"invite expired", service.ErrInviteExpired, http.StatusBadRequest, "Invite has expired", false},
		{"invite used", service.ErrInviteUsed, http.StatusBadRequest, "Invite has already been used", false},
		{"bad token", auth.ErrInvalidInvite, http.StatusBadRequest, "Invalid invite", false},
		{"converted", service.ErrAlreadyConverted, http.StatusBadRequest, "Touch already converted", false},
		{"storage", service.ErrStorageDisabled, http.StatusServiceUnavailable, service.ErrStorageDisabled.Error(), false},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "fallback", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			writeError(c, tc.err, "fallback")

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.body, body["error"])
			assert.Equal(t, tc.recorded, len(c.Errors) > 0)
		})
	}
}

func TestWriteErrorPainRadar(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, painradar.AIError(errors.New("upstream")), "fallback")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, painradar.CodeAIAnalysis, body["code"])
	assert.Equal(t, "AI analysis failed", body["error"])
	assert.Len(t, c.Errors, 1)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	writeError(c, painradar.ValidationError("Query must be at least 2 characters"), "fallback")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, c.Errors)
}

func TestQueryInt(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?limit=25&offset=abc", nil)

	n, ok := queryInt(c, "limit", 10)
	assert.True(t, ok)
	assert.Equal(t, 25, n)

	n, ok = queryInt(c, "missing", 10)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = queryInt(c, "offset", 0)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeSessions map[string]string

func (f fakeSessions) GetUserID(_ context.Context, id string) (string, bool) {
	u, ok := f[id]
	return u, ok
}

type fakeMembers struct {
	members map[string]dom.Member // key: user|workspace
	first   map[string]dom.Member // key: user
	err     error
}

func (f fakeMembers) ResolveMember(_ context.Context, userID, workspaceID string) (dom.Member, bool, error) {
	if f.err != nil {
		return dom.Member{}, false, f.err
	}
	if workspaceID == "" {
		m, ok := f.first[userID]
		return m, ok, nil
	}
	m, ok := f.members[userID+"|"+workspaceID]
	return m, ok, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user":      UserIDFromContext(c),
			"workspace": WorkspaceIDFromContext(c),
			"role":      RoleFromContext(c),
		})
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	r := newEngine(RequireSession(fakeSessions{"s1": "u1"}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u1"`)
}

func TestRequireWorkspace(t *testing.T) {
	members := fakeMembers{
		members: map[string]dom.Member{"u1|ws-2": {WorkspaceID: "ws-2", UserID: "u1", Role: dom.RoleViewer}},
		first:   map[string]dom.Member{"u1": {WorkspaceID: "ws-1", UserID: "u1", Role: dom.RoleOwner}},
	}
	r := newEngine(RequireSession(fakeSessions{"s1": "u1"}), RequireWorkspace(members))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	w := do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"workspace":"ws-1"`)

	req = httptest.NewRequest(http.MethodGet, "/x?workspaceId=ws-2", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	w = do(r, req)
	assert.Contains(t, w.Body.String(), `"role":"VIEWER"`)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(WorkspaceHeader, "ws-other")
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	broken := newEngine(RequireSession(fakeSessions{"s1": "u1"}), RequireWorkspace(fakeMembers{err: errors.New("db down")}))
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s1"})
	assert.Equal(t, http.StatusInternalServerError, do(broken, req).Code)
}

func TestRequireRole(t *testing.T) {
	members := fakeMembers{first: map[string]dom.Member{
		"viewer": {WorkspaceID: "ws", Role: dom.RoleViewer},
		"admin":  {WorkspaceID: "ws", Role: dom.RoleAdmin},
	}}
	r := newEngine(RequireSession(fakeSessions{"s-viewer": "viewer", "s-admin": "admin"}),
		RequireWorkspace(members), RequireRole(dom.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s-viewer"})
	assert.Equal(t, http.StatusForbidden, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "s-admin"})
	assert.Equal(t, http.StatusOK, do(r, req).Code)
}

func TestRequireCronSecret(t *testing.T) {
	r := newEngine(RequireCronSecret("s3cret", true))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, do(r, req).Code)

	for _, header := range []string{"s3cret", "bearer s3cret", "Basic s3cret", "Bearer  s3cret"} {
		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, http.StatusUnauthorized, do(r, req).Code, header)
	}

	open := newEngine(RequireCronSecret("", false))
	assert.Equal(t, http.StatusOK, do(open, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)

	locked := newEngine(RequireCronSecret("", true))
	assert.Equal(t, http.StatusUnauthorized, do(locked, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

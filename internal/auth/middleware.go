package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/gin-gonic/gin"
)

const SessionCookieName = "session_id"

const (
	contextKeyUserID      = "user_id"
	contextKeyWorkspaceID = "workspace_id"
	contextKeyRole        = "member_role"
)

// WorkspaceHeader selects the workspace of a request; the workspaceId query parameter is the fallback.
const WorkspaceHeader = "X-Workspace-ID"

// SessionLookup resolves a session id to a user id.
type SessionLookup interface {
	GetUserID(ctx context.Context, sessionID string) (string, bool)
}

// MemberResolver finds the membership of userID in workspaceID. An empty
// workspaceID asks for the user's first workspace. ok is false when the user
// is not a member.
type MemberResolver interface {
	ResolveMember(ctx context.Context, userID, workspaceID string) (m dom.Member, ok bool, err error)
}

// UserIDFromContext returns the current user ID set by RequireSession. Empty if not set.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

// WorkspaceIDFromContext returns the workspace chosen by RequireWorkspace.
func WorkspaceIDFromContext(c *gin.Context) string {
	return c.GetString(contextKeyWorkspaceID)
}

// RoleFromContext returns the caller's role in the current workspace.
func RoleFromContext(c *gin.Context) dom.Role {
	v, ok := c.Get(contextKeyRole)
	if !ok {
		return ""
	}
	role, _ := v.(dom.Role)
	return role
}

// RequireSession returns a middleware that checks for a valid session cookie
// and sets the current user ID in context. If missing or invalid, responds with 401.
func RequireSession(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		userID, ok := sessions.GetUserID(c.Request.Context(), sessionID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// RequireWorkspace resolves the workspace of the request and checks that the
// session user is a member of it. Must run after RequireSession.
func RequireWorkspace(members MemberResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := strings.TrimSpace(c.GetHeader(WorkspaceHeader))
		if requested == "" {
			requested = strings.TrimSpace(c.Query("workspaceId"))
		}
		m, ok, err := members.ResolveMember(c.Request.Context(), UserIDFromContext(c), requested)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve workspace"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no access to workspace"})
			return
		}
		c.Set(contextKeyWorkspaceID, m.WorkspaceID)
		c.Set(contextKeyRole, m.Role)
		c.Next()
	}
}

// RequireRole rejects members whose role is below min with 403.
func RequireRole(min dom.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !RoleFromContext(c).AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// RequireCronSecret checks "Authorization: Bearer <secret>". An empty secret
// disables the check outside production and locks the endpoints in production.
func RequireCronSecret(secret string, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			if production {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

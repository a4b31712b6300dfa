package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// writeError maps a service error to its HTTP response. Unexpected errors are
// attached to the context for the request logger and answered with fallback.
func writeError(c *gin.Context, err error, fallback string) {
	var (
		pe *painradar.Error
		ve *service.ValidationError
		fe *service.ForbiddenError
	)
	switch {
	case errors.As(err, &pe):
		if pe.Status >= http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(pe.Status, dto.PainErrorResponse{Error: pe.Message, Code: pe.Code, Retryable: pe.Retryable})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	case errors.As(err, &fe):
		c.JSON(http.StatusForbidden, gin.H{"error": fe.Msg})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, service.ErrInviteExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invite has expired"})
	case errors.Is(err, service.ErrInviteUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invite has already been used"})
	case errors.Is(err, service.ErrInvalidInvite), errors.Is(err, auth.ErrInvalidInvite):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invite"})
	case errors.Is(err, service.ErrAlreadyConverted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Touch already converted"})
	case errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// bindJSON decodes the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// queryInt reads an integer query parameter; absent means def.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return n, true
}

func currentWorkspace(c *gin.Context) string { return auth.WorkspaceIDFromContext(c) }

func currentUser(c *gin.Context) string { return auth.UserIDFromContext(c) }

// enumPtr converts an optional JSON string into an upper-cased domain enum.
func enumPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(strings.ToUpper(strings.TrimSpace(*s)))
	return &v
}

func enumOf[T ~string](s string) T { return T(strings.ToUpper(strings.TrimSpace(s))) }

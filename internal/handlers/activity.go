package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// ActivityHandler serves the workspace audit log and comments, which are
// stored in it.
type ActivityHandler struct {
	svc      *service.ActivityService
	comments *service.CommentService
}

func NewActivityHandler(svc *service.ActivityService, comments *service.CommentService) *ActivityHandler {
	return &ActivityHandler{svc: svc, comments: comments}
}

// List godoc
// @Summary      Activity log
// @Tags         activity
// @Produce      json
// @Security     CookieAuth
// @Param        type        query  string  false  "CREATE, UPDATE, DELETE, STATUS_CHANGE, COMMENT or ASSIGN"
// @Param        entityType  query  string  false  "Entity type"
// @Param        userId      query  string  false  "Author"
// @Param        dateFrom    query  string  false  "From (YYYY-MM-DD or RFC3339)"
// @Param        dateTo      query  string  false  "To (YYYY-MM-DD or RFC3339)"
// @Param        limit       query  int     false  "Page size, at most 200"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {object}  dto.ListActivityResponse
// @Failure      400  {object}  map[string]string
// @Router       /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	f := dom.ActivityFilter{
		Type:       enumOf[dom.ActivityType](c.Query("type")),
		EntityType: c.Query("entityType"),
		UserID:     c.Query("userId"),
	}
	var ok bool
	if f.From, ok = queryTime(c, "dateFrom"); !ok {
		return
	}
	if f.To, ok = queryTime(c, "dateTo"); !ok {
		return
	}
	if f.Limit, ok = queryInt(c, "limit", 0); !ok {
		return
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return
	}
	list, total, err := h.svc.List(c.Request.Context(), currentWorkspace(c), f)
	if err != nil {
		writeError(c, err, "failed to list activity")
		return
	}
	items := make([]dto.ActivityResponse, len(list))
	for i, a := range list {
		items[i] = dto.ActivityResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			UserName:   a.UserName,
			ProjectID:  a.ProjectID,
			Type:       string(a.Type),
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			Action:     a.Action,
			OldValue:   a.OldValue,
			NewValue:   a.NewValue,
			CreatedAt:  a.CreatedAt,
		}
	}
	limit := f.Limit
	if limit <= 0 {
		limit = len(items)
	}
	c.JSON(http.StatusOK, dto.ListActivityResponse{Items: items, Total: total, Limit: limit, Offset: max(f.Offset, 0)})
}

// Comment godoc
// @Summary      Comment on a task or project
// @Tags         activity
// @Accept       json
// @Security     CookieAuth
// @Param        body  body  dto.CreateCommentRequest  true  "Comment"
// @Success      201
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comments [post]
func (h *ActivityHandler) Comment(c *gin.Context) {
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.comments.Add(c.Request.Context(), currentWorkspace(c), currentUser(c), req.EntityType, req.EntityID, req.Text); err != nil {
		writeError(c, err, "failed to add comment")
		return
	}
	c.Status(http.StatusCreated)
}

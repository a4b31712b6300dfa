package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// Create godoc
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateFeedbackRequest  true  "Feedback"
// @Success      201  {object}  dto.FeedbackResponse
// @Failure      400  {object}  map[string]string
// @Router       /feedback [post]
func (h *FeedbackHandler) Create(c *gin.Context) {
	var req dto.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Feedback{
		Type:        enumOf[dom.FeedbackType](req.Type),
		Title:       req.Title,
		Description: req.Description,
		Priority:    enumPtr[dom.Priority](req.Priority),
	})
	if err != nil {
		writeError(c, err, "failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, feedbackToResponse(f))
}

// List godoc
// @Summary      List feedback
// @Tags         feedback
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListFeedbackResponse
// @Router       /feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c))
	if err != nil {
		writeError(c, err, "failed to list feedback")
		return
	}
	items := make([]dto.FeedbackResponse, len(list))
	for i := range list {
		items[i] = feedbackToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListFeedbackResponse{Items: items})
}

// UpdateStatus godoc
// @Summary      Change feedback status
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                           true  "Feedback ID"
// @Param        body  body  dto.UpdateFeedbackStatusRequest  true  "Status"
// @Success      200  {object}  dto.FeedbackResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /feedback/{id}/status [patch]
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateFeedbackStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.svc.UpdateStatus(c.Request.Context(), currentWorkspace(c), c.Param("id"), enumOf[dom.FeedbackStatus](req.Status))
	if err != nil {
		writeError(c, err, "failed to update feedback")
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(f))
}

// Delete godoc
// @Summary      Delete feedback
// @Tags         feedback
// @Security     CookieAuth
// @Param        id   path  string  true  "Feedback ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), auth.RoleFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to delete feedback")
		return
	}
	c.Status(http.StatusNoContent)
}

func feedbackToResponse(f dom.Feedback) dto.FeedbackResponse {
	var priority *string
	if f.Priority != nil {
		p := string(*f.Priority)
		priority = &p
	}
	return dto.FeedbackResponse{
		ID:            f.ID,
		Type:          string(f.Type),
		Title:         f.Title,
		Description:   f.Description,
		Priority:      priority,
		Status:        string(f.Status),
		CreatedByID:   f.CreatedByID,
		CreatedByName: f.CreatedByName,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

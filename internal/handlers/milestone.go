package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type MilestoneHandler struct {
	svc *service.MilestoneService
}

func NewMilestoneHandler(svc *service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{svc: svc}
}

// Create godoc
// @Summary      Add a project milestone
// @Description  Without an order the milestone goes after the last one.
// @Tags         milestones
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateMilestoneRequest  true  "Milestone"
// @Success      201  {object}  dto.MilestoneResponse
// @Failure      400  {object}  map[string]string
// @Router       /milestones [post]
func (h *MilestoneHandler) Create(c *gin.Context) {
	var req dto.CreateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Milestone{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate.Ptr(),
		Order:       req.Order,
	})
	if err != nil {
		writeError(c, err, "failed to create milestone")
		return
	}
	c.JSON(http.StatusCreated, milestoneToResponse(m))
}

// List godoc
// @Summary      Project milestones in order
// @Tags         milestones
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Project ID"
// @Success      200  {object}  dto.ListMilestonesResponse
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id}/milestones [get]
func (h *MilestoneHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list milestones")
		return
	}
	out := dto.ListMilestonesResponse{Items: make([]dto.MilestoneResponse, len(list))}
	for i, m := range list {
		out.Items[i] = milestoneToResponse(m)
	}
	c.JSON(http.StatusOK, out)
}

// Update godoc
// @Summary      Update a milestone
// @Tags         milestones
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                      true  "Milestone ID"
// @Param        body  body  dto.UpdateMilestoneRequest  true  "Fields to change"
// @Success      200  {object}  dto.MilestoneResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /milestones/{id} [patch]
func (h *MilestoneHandler) Update(c *gin.Context) {
	var req dto.UpdateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.MilestonePatch{
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
		Status:      enumPtr[dom.MilestoneStatus](req.Status),
	}
	patch.DueDate, patch.ClearDueDate = nullableTime(req.DueDate)

	m, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update milestone")
		return
	}
	c.JSON(http.StatusOK, milestoneToResponse(m))
}

// Delete godoc
// @Summary      Delete a milestone
// @Tags         milestones
// @Security     CookieAuth
// @Param        id   path  string  true  "Milestone ID"
// @Success      204
// @Router       /milestones/{id} [delete]
func (h *MilestoneHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete milestone")
		return
	}
	c.Status(http.StatusNoContent)
}

func milestoneToResponse(m dom.Milestone) dto.MilestoneResponse {
	return dto.MilestoneResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		Order:       m.Order,
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

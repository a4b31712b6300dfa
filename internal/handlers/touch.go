package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// TouchHandler serves outbound contact attempts and their conversion to clients.
type TouchHandler struct {
	svc *service.TouchService
}

func NewTouchHandler(svc *service.TouchService) *TouchHandler {
	return &TouchHandler{svc: svc}
}

// Create godoc
// @Summary      Log a touch
// @Tags         touches
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateTouchRequest  true  "Touch"
// @Success      201  {object}  dto.TouchResponse
// @Failure      400  {object}  map[string]string
// @Router       /touches [post]
func (h *TouchHandler) Create(c *gin.Context) {
	var req dto.CreateTouchRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Touch{
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		ContactCompany:  req.ContactCompany,
		ContactPosition: req.ContactPosition,
		Industry:        req.Industry,
		SocialMedia:     req.SocialMedia,
		Source:          req.Source,
		Description:     req.Description,
		SentMessage:     req.SentMessage,
		Status:          enumOf[dom.TouchStatus](req.Status),
		FollowUpAt:      req.FollowUpAt.Ptr(),
		AssigneeID:      req.AssigneeID,
	})
	if err != nil {
		writeError(c, err, "failed to create touch")
		return
	}
	c.JSON(http.StatusCreated, touchToResponse(t))
}

// List godoc
// @Summary      List touches
// @Tags         touches
// @Produce      json
// @Security     CookieAuth
// @Param        status  query  string  false  "Status"
// @Success      200  {object}  dto.ListTouchesResponse
// @Router       /touches [get]
func (h *TouchHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), strings.ToUpper(c.Query("status")))
	if err != nil {
		writeError(c, err, "failed to list touches")
		return
	}
	items := make([]dto.TouchResponse, len(list))
	for i := range list {
		items[i] = touchToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListTouchesResponse{Items: items})
}

// Get godoc
// @Summary      Get touch
// @Tags         touches
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Touch ID"
// @Success      200  {object}  dto.TouchResponse
// @Failure      404  {object}  map[string]string
// @Router       /touches/{id} [get]
func (h *TouchHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get touch")
		return
	}
	c.JSON(http.StatusOK, touchToResponse(t))
}

// Update godoc
// @Summary      Update touch
// @Tags         touches
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                  true  "Touch ID"
// @Param        body  body  dto.UpdateTouchRequest  true  "Fields to change"
// @Success      200  {object}  dto.TouchResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /touches/{id} [patch]
func (h *TouchHandler) Update(c *gin.Context) {
	var req dto.UpdateTouchRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.TouchPatch{
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		ContactCompany:  req.ContactCompany,
		ContactPosition: req.ContactPosition,
		Industry:        req.Industry,
		SocialMedia:     req.SocialMedia,
		Source:          req.Source,
		Description:     req.Description,
		SentMessage:     req.SentMessage,
		Status:          enumPtr[dom.TouchStatus](req.Status),
		AssigneeID:      req.AssigneeID,
	}
	patch.FollowUpAt, patch.ClearFollowUp = nullableTime(req.FollowUpAt)

	t, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update touch")
		return
	}
	c.JSON(http.StatusOK, touchToResponse(t))
}

// Delete godoc
// @Summary      Delete touch
// @Tags         touches
// @Security     CookieAuth
// @Param        id   path  string  true  "Touch ID"
// @Success      204
// @Router       /touches/{id} [delete]
func (h *TouchHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete touch")
		return
	}
	c.Status(http.StatusNoContent)
}

// Convert godoc
// @Summary      Convert a touch into a client
// @Tags         touches
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Touch ID"
// @Success      201  {object}  dto.ConvertTouchResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /touches/{id}/convert [post]
func (h *TouchHandler) Convert(c *gin.Context) {
	t, client, err := h.svc.Convert(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to convert touch")
		return
	}
	c.JSON(http.StatusCreated, dto.ConvertTouchResponse{Touch: touchToResponse(t), Client: clientToResponse(client)})
}

func touchToResponse(t dom.Touch) dto.TouchResponse {
	return dto.TouchResponse{
		ID:                  t.ID,
		ContactName:         t.ContactName,
		ContactEmail:        t.ContactEmail,
		ContactPhone:        t.ContactPhone,
		ContactCompany:      t.ContactCompany,
		ContactPosition:     t.ContactPosition,
		Industry:            t.Industry,
		SocialMedia:         t.SocialMedia,
		Source:              t.Source,
		Description:         t.Description,
		SentMessage:         t.SentMessage,
		Status:              string(t.Status),
		FollowUpAt:          t.FollowUpAt,
		AssigneeID:          t.AssigneeID,
		AssigneeName:        t.AssigneeName,
		ConvertedToClientID: t.ConvertedToClientID,
		ConvertedAt:         t.ConvertedAt,
		CreatedByID:         t.CreatedByID,
		CreatedByName:       t.CreatedByName,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List godoc
// @Summary      In-app notifications of the current user
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Param        unread  query  bool  false  "Only unread"
// @Success      200  {object}  dto.ListNotificationsResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Query("unread") == "true")
	if err != nil {
		writeError(c, err, "failed to list notifications")
		return
	}
	items := make([]dto.NotificationResponse, len(list))
	for i, n := range list {
		items[i] = dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Link:      n.Link,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, dto.ListNotificationsResponse{Items: items})
}

// Count godoc
// @Summary      Number of unread notifications
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.CountResponse
// @Router       /notifications/count [get]
func (h *NotificationHandler) Count(c *gin.Context) {
	n, err := h.svc.CountUnread(c.Request.Context(), currentWorkspace(c), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

// MarkRead godoc
// @Summary      Mark a notification read
// @Tags         notifications
// @Security     CookieAuth
// @Param        id   path  string  true  "Notification ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /notifications/{id} [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to mark notification")
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead godoc
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.CountResponse
// @Router       /notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), currentWorkspace(c), currentUser(c))
	if err != nil {
		writeError(c, err, "failed to mark notifications")
		return
	}
	c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

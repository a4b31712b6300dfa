package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type EventHandler struct {
	svc *service.EventService
}

func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// Create godoc
// @Summary      Create calendar event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateEventRequest  true  "Event"
// @Success      201  {object}  dto.EventResponse
// @Failure      400  {object}  map[string]string
// @Router       /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	e := dom.Event{
		Title:       req.Title,
		Description: req.Description,
		Type:        enumOf[dom.EventType](req.Type),
		EndDate:     req.EndDate.Ptr(),
		AllDay:      req.AllDay,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		ClientID:    req.ClientID,
	}
	if start := req.StartDate.Ptr(); start != nil {
		e.StartDate = *start
	}
	created, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), e)
	if err != nil {
		writeError(c, err, "failed to create event")
		return
	}
	c.JSON(http.StatusCreated, eventToResponse(created))
}

// List godoc
// @Summary      List calendar events
// @Tags         events
// @Produce      json
// @Security     CookieAuth
// @Param        from  query  string  false  "Start of range (YYYY-MM-DD or RFC3339)"
// @Param        to    query  string  false  "End of range (YYYY-MM-DD or RFC3339)"
// @Param        type  query  string  false  "Event type"
// @Success      200  {object}  dto.ListEventsResponse
// @Failure      400  {object}  map[string]string
// @Router       /events [get]
func (h *EventHandler) List(c *gin.Context) {
	f := dom.EventFilter{Type: enumOf[dom.EventType](c.Query("type"))}
	var ok bool
	if f.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if f.To, ok = queryTime(c, "to"); !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), f)
	if err != nil {
		writeError(c, err, "failed to list events")
		return
	}
	items := make([]dto.EventResponse, len(list))
	for i := range list {
		items[i] = eventToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListEventsResponse{Items: items})
}

// Get godoc
// @Summary      Get calendar event
// @Tags         events
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Event ID"
// @Success      200  {object}  dto.EventResponse
// @Failure      404  {object}  map[string]string
// @Router       /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	e, err := h.svc.Get(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get event")
		return
	}
	c.JSON(http.StatusOK, eventToResponse(e))
}

// Update godoc
// @Summary      Update calendar event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                  true  "Event ID"
// @Param        body  body  dto.UpdateEventRequest  true  "Fields to change"
// @Success      200  {object}  dto.EventResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /events/{id} [patch]
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Type:        enumPtr[dom.EventType](req.Type),
		AllDay:      req.AllDay,
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		ClientID:    req.ClientID,
	}
	if req.StartDate != nil {
		if req.StartDate.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate cannot be cleared"})
			return
		}
		patch.StartDate = req.StartDate.Ptr()
	}
	patch.EndDate, patch.ClearEnd = nullableTime(req.EndDate)

	e, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update event")
		return
	}
	c.JSON(http.StatusOK, eventToResponse(e))
}

// Delete godoc
// @Summary      Delete calendar event
// @Tags         events
// @Security     CookieAuth
// @Param        id   path  string  true  "Event ID"
// @Success      204
// @Router       /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete event")
		return
	}
	c.Status(http.StatusNoContent)
}

// queryTime parses an optional date query parameter and answers 400 when malformed.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := dto.ParseTime(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": " + err.Error()})
		return nil, false
	}
	return &t, true
}

func eventToResponse(e dom.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Type:        string(e.Type),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		AllDay:      e.AllDay,
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		ClientID:    e.ClientID,
		CreatedByID: e.CreatedByID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

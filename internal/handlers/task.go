package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// Create godoc
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateTaskRequest  true  "Task"
// @Success      201  {object}  dto.TaskResponse
// @Failure      400  {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		ParentID:    req.ParentID,
		Status:      enumOf[dom.TaskStatus](req.Status),
		Priority:    enumOf[dom.Priority](req.Priority),
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate.Ptr(),
	})
	if err != nil {
		writeError(c, err, "failed to create task")
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t, time.Now()))
}

// List godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        projectId   query  string  false  "Project ID"
// @Param        assigneeId  query  string  false  "Assignee ID"
// @Param        status      query  string  false  "Status"
// @Param        archived    query  bool    false  "Archived tasks instead of active ones"
// @Success      200  {object}  dto.ListTasksResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), dom.TaskFilter{
		ProjectID:  c.Query("projectId"),
		AssigneeID: c.Query("assigneeId"),
		Status:     enumOf[dom.TaskStatus](c.Query("status")),
		Archived:   c.Query("archived") == "true",
	})
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}
	now := time.Now()
	items := make([]dto.TaskResponse, len(list))
	for i := range list {
		items[i] = taskToResponse(list[i], now)
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Items: items})
}

// Get godoc
// @Summary      Get task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t, time.Now()))
}

// Update godoc
// @Summary      Update task
// @Description  Sending null (or "") for projectId, parentId, assigneeId or dueDate clears it.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                 true  "Task ID"
// @Param        body  body  dto.UpdateTaskRequest  true  "Fields to change"
// @Success      200  {object}  dto.TaskResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      enumPtr[dom.TaskStatus](req.Status),
		Priority:    enumPtr[dom.Priority](req.Priority),
	}
	patch.ProjectID, patch.ClearProject = nullableID(req.ProjectID)
	patch.ParentID, patch.ClearParent = nullableID(req.ParentID)
	patch.AssigneeID, patch.ClearAssignee = nullableID(req.AssigneeID)
	patch.DueDate, patch.ClearDueDate = nullableTime(req.DueDate)

	t, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t, time.Now()))
}

// Delete godoc
// @Summary      Delete task
// @Tags         tasks
// @Security     CookieAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// Archive godoc
// @Summary      Archive task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Router       /tasks/{id}/archive [post]
func (h *TaskHandler) Archive(c *gin.Context) { h.setArchived(c, true) }

// Unarchive godoc
// @Summary      Restore an archived task
// @Tags         tasks
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Router       /tasks/{id}/archive [delete]
func (h *TaskHandler) Unarchive(c *gin.Context) { h.setArchived(c, false) }

func (h *TaskHandler) setArchived(c *gin.Context, archived bool) {
	t, err := h.svc.SetArchived(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), archived)
	if err != nil {
		writeError(c, err, "failed to archive task")
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t, time.Now()))
}

// BulkUpdate godoc
// @Summary      Update many tasks at once
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.BulkUpdateTasksRequest  true  "Tasks and changes"
// @Success      200  {object}  dto.BulkUpdateResponse
// @Failure      400  {object}  map[string]string
// @Router       /tasks/bulk [patch]
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	var req dto.BulkUpdateTasksRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.BulkUpdate(c.Request.Context(), currentWorkspace(c), currentUser(c), req.TaskIDs, dom.TaskPatch{
		Status:     enumPtr[dom.TaskStatus](req.Status),
		Priority:   enumPtr[dom.Priority](req.Priority),
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		writeError(c, err, "failed to update tasks")
		return
	}
	c.JSON(http.StatusOK, dto.BulkUpdateResponse{Updated: n})
}

// BulkDelete godoc
// @Summary      Delete many tasks at once
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.BulkDeleteTasksRequest  true  "Tasks to delete"
// @Success      200  {object}  dto.BulkDeleteResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/bulk [delete]
func (h *TaskHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteTasksRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.BulkDelete(c.Request.Context(), currentWorkspace(c), currentUser(c), req.TaskIDs)
	if err != nil {
		writeError(c, err, "failed to delete tasks")
		return
	}
	c.JSON(http.StatusOK, dto.BulkDeleteResponse{Deleted: n})
}

// nullableID maps a PATCH reference to (value, clear); "" also clears.
func nullableID(n dto.Nullable[string]) (*string, bool) {
	if n.Clear() || (n.Value != nil && *n.Value == "") {
		return nil, true
	}
	return n.Value, false
}

func nullableTime(n dto.Nullable[dto.Time]) (*time.Time, bool) {
	if n.Clear() || (n.Value != nil && n.Value.IsZero()) {
		return nil, true
	}
	if n.Value == nil {
		return nil, false
	}
	return n.Value.Ptr(), false
}

func taskToResponse(t dom.Task, now time.Time) dto.TaskResponse {
	return dto.TaskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		ProjectName:  t.ProjectName,
		ParentID:     t.ParentID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		AssigneeID:   t.AssigneeID,
		AssigneeName: t.AssigneeName,
		DueDate:      t.DueDate,
		CompletedAt:  t.CompletedAt,
		IsArchived:   t.IsArchived,
		ArchivedAt:   t.ArchivedAt,
		IsOverdue:    t.IsOverdue(now),
		CreatedByID:  t.CreatedByID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

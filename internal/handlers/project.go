package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// multipart framing on top of the file itself
const uploadOverhead = 1 << 20

type ProjectHandler struct {
	svc *service.ProjectService
}

func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// Create godoc
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateProjectRequest  true  "Project"
// @Success      201  {object}  dto.ProjectResponse
// @Failure      400  {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Project{
		Name:            req.Name,
		Description:     req.Description,
		ClientID:        req.ClientID,
		Type:            enumOf[dom.ProjectType](req.Type),
		Status:          enumOf[dom.ProjectStatus](req.Status),
		Priority:        enumOf[dom.Priority](req.Priority),
		Budget:          req.Budget,
		StartDate:       req.StartDate.Ptr(),
		EndDatePlan:     req.EndDatePlan.Ptr(),
		PainDescription: req.PainDescription,
	})
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}
	c.JSON(http.StatusCreated, projectToResponse(p))
}

// List godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Param        status    query  string  false  "Status"
// @Param        type      query  string  false  "Type"
// @Param        clientId  query  string  false  "Client ID"
// @Success      200  {object}  dto.ListProjectsResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), dom.ProjectFilter{
		Status:   enumOf[dom.ProjectStatus](c.Query("status")),
		Type:     enumOf[dom.ProjectType](c.Query("type")),
		ClientID: c.Query("clientId"),
	})
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	items := make([]dto.ProjectResponse, len(list))
	for i := range list {
		items[i] = projectToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListProjectsResponse{Items: items})
}

// Get godoc
// @Summary      Get project
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Project ID"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get project")
		return
	}
	c.JSON(http.StatusOK, projectToResponse(p))
}

// Update godoc
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                    true  "Project ID"
// @Param        body  body  dto.UpdateProjectRequest  true  "Fields to change"
// @Success      200  {object}  dto.ProjectResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.ProjectPatch{
		Name:            req.Name,
		Description:     req.Description,
		ClientID:        req.ClientID.Value,
		ClearClient:     req.ClientID.Clear() || (req.ClientID.Value != nil && *req.ClientID.Value == ""),
		Type:            enumPtr[dom.ProjectType](req.Type),
		Status:          enumPtr[dom.ProjectStatus](req.Status),
		Priority:        enumPtr[dom.Priority](req.Priority),
		Budget:          req.Budget,
		PainDescription: req.PainDescription,
	}
	if req.StartDate != nil {
		patch.StartDate = req.StartDate.Ptr()
	}
	if req.EndDatePlan != nil {
		patch.EndDatePlan = req.EndDatePlan.Ptr()
	}
	p, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update project")
		return
	}
	c.JSON(http.StatusOK, projectToResponse(p))
}

// Delete godoc
// @Summary      Delete project
// @Tags         projects
// @Security     CookieAuth
// @Param        id   path  string  true  "Project ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadFile godoc
// @Summary      Attach a file to a project
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string  true  "Project ID"
// @Param        file  formData  file    true  "File, at most 25 MB"
// @Success      201  {object}  dto.ProjectFileResponse
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /projects/{id}/files [post]
func (h *ProjectHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, service.MaxFileSize+uploadOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required and must not exceed 25 MB"})
		return
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	pf, err := h.svc.UploadFile(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), service.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, err, "failed to upload file")
		return
	}
	c.JSON(http.StatusCreated, fileToResponse(pf))
}

// ListFiles godoc
// @Summary      List project files
// @Tags         files
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Project ID"
// @Success      200  {object}  dto.ListProjectFilesResponse
// @Router       /projects/{id}/files [get]
func (h *ProjectHandler) ListFiles(c *gin.Context) {
	list, err := h.svc.ListFiles(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list files")
		return
	}
	items := make([]dto.ProjectFileResponse, len(list))
	for i := range list {
		items[i] = fileToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListProjectFilesResponse{Items: items})
}

// DownloadFile godoc
// @Summary      Presigned download link
// @Tags         files
// @Produce      json
// @Security     CookieAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      200  {object}  dto.DownloadURLResponse
// @Failure      404  {object}  map[string]string
// @Router       /files/{fileId}/download [get]
func (h *ProjectHandler) DownloadFile(c *gin.Context) {
	url, err := h.svc.DownloadURL(c.Request.Context(), currentWorkspace(c), c.Param("fileId"))
	if err != nil {
		writeError(c, err, "failed to create download link")
		return
	}
	c.JSON(http.StatusOK, dto.DownloadURLResponse{URL: url})
}

// DeleteFile godoc
// @Summary      Delete a project file
// @Tags         files
// @Security     CookieAuth
// @Param        fileId  path  string  true  "File ID"
// @Success      204
// @Router       /files/{fileId} [delete]
func (h *ProjectHandler) DeleteFile(c *gin.Context) {
	if err := h.svc.DeleteFile(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("fileId")); err != nil {
		writeError(c, err, "failed to delete file")
		return
	}
	c.Status(http.StatusNoContent)
}

func projectToResponse(p dom.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		ClientID:        p.ClientID,
		ClientName:      p.ClientName,
		Type:            string(p.Type),
		Status:          string(p.Status),
		Priority:        string(p.Priority),
		Budget:          p.Budget,
		StartDate:       p.StartDate,
		EndDatePlan:     p.EndDatePlan,
		PainDescription: p.PainDescription,
		TaskCount:       p.TaskCount,
		CreatedByID:     p.CreatedByID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func fileToResponse(f dom.ProjectFile) dto.ProjectFileResponse {
	return dto.ProjectFileResponse{
		ID:           f.ID,
		ProjectID:    f.ProjectID,
		Name:         f.Name,
		ContentType:  f.ContentType,
		Size:         f.Size,
		UploadedByID: f.UploadedByID,
		CreatedAt:    f.CreatedAt,
	}
}

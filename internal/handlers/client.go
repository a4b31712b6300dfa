package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

// Create godoc
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateClientRequest  true  "Client"
// @Success      201  {object}  dto.ClientResponse
// @Failure      400  {object}  map[string]string
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.svc.Create(c.Request.Context(), currentWorkspace(c), currentUser(c), dom.Client{
		Name:         req.Name,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		Source:       enumOf[dom.ClientSource](req.Source),
		Status:       enumOf[dom.ClientStatus](req.Status),
		Notes:        req.Notes,
		SocialLinks:  socialLinksFromDTO(req.SocialLinks),
		CustomFields: req.CustomFields,
	})
	if err != nil {
		writeError(c, err, "failed to create client")
		return
	}
	c.JSON(http.StatusCreated, clientToResponse(client))
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        q       query  string  false  "Search in name, company and email"
// @Param        status  query  string  false  "ACTIVE, INACTIVE or LEAD"
// @Success      200  {object}  dto.ListClientsResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), currentWorkspace(c), dom.ClientFilter{
		Query:  c.Query("q"),
		Status: enumOf[dom.ClientStatus](c.Query("status")),
	})
	if err != nil {
		writeError(c, err, "failed to list clients")
		return
	}
	items := make([]dto.ClientResponse, len(list))
	for i := range list {
		items[i] = clientToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListClientsResponse{Items: items})
}

// Get godoc
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Client ID"
// @Success      200  {object}  dto.ClientResponse
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.svc.Get(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get client")
		return
	}
	c.JSON(http.StatusOK, clientToResponse(client))
}

// Update godoc
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                   true  "Client ID"
// @Param        body  body  dto.UpdateClientRequest  true  "Fields to change"
// @Success      200  {object}  dto.ClientResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [patch]
func (h *ClientHandler) Update(c *gin.Context) {
	var req dto.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := service.ClientPatch{
		Name:         req.Name,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
		Website:      req.Website,
		Source:       enumPtr[dom.ClientSource](req.Source),
		Status:       enumPtr[dom.ClientStatus](req.Status),
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
	}
	if req.SocialLinks != nil {
		links := socialLinksFromDTO(*req.SocialLinks)
		patch.SocialLinks = &links
	}
	client, err := h.svc.Update(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"), patch)
	if err != nil {
		writeError(c, err, "failed to update client")
		return
	}
	c.JSON(http.StatusOK, clientToResponse(client))
}

// Delete godoc
// @Summary      Delete client
// @Tags         clients
// @Security     CookieAuth
// @Param        id   path  string  true  "Client ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete client")
		return
	}
	c.Status(http.StatusNoContent)
}

// Analytics godoc
// @Summary      Client analytics
// @Tags         clients
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Client ID"
// @Success      200  {object}  dto.ClientAnalyticsResponse
// @Failure      404  {object}  map[string]string
// @Router       /clients/{id}/analytics [get]
func (h *ClientHandler) Analytics(c *gin.Context) {
	a, err := h.svc.Analytics(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to load analytics")
		return
	}
	byStatus := make(map[string]int, len(a.ProjectsByStatus))
	for st, n := range a.ProjectsByStatus {
		byStatus[string(st)] = n
	}
	c.JSON(http.StatusOK, dto.ClientAnalyticsResponse{
		ClientID:         a.ClientID,
		ProjectsByStatus: byStatus,
		TotalBudget:      a.TotalBudget,
		TasksTotal:       a.TasksTotal,
		TasksCompleted:   a.TasksCompleted,
		CompletionRate:   a.CompletionRate(),
	})
}

func socialLinksFromDTO(in []dto.SocialLink) []dom.SocialLink {
	out := make([]dom.SocialLink, len(in))
	for i, l := range in {
		out[i] = dom.SocialLink{Type: l.Type, URL: l.URL}
	}
	return out
}

func clientToResponse(cl dom.Client) dto.ClientResponse {
	links := make([]dto.SocialLink, len(cl.SocialLinks))
	for i, l := range cl.SocialLinks {
		links[i] = dto.SocialLink{Type: l.Type, URL: l.URL}
	}
	fields := cl.CustomFields
	if fields == nil {
		fields = map[string]any{}
	}
	return dto.ClientResponse{
		ID:           cl.ID,
		Name:         cl.Name,
		Company:      cl.Company,
		Email:        cl.Email,
		Phone:        cl.Phone,
		Website:      cl.Website,
		Source:       string(cl.Source),
		Status:       string(cl.Status),
		Notes:        cl.Notes,
		SocialLinks:  links,
		CustomFields: fields,
		ProjectCount: cl.ProjectCount,
		CreatedByID:  cl.CreatedByID,
		CreatedAt:    cl.CreatedAt,
		UpdatedAt:    cl.UpdatedAt,
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// SearchHandler serves the command palette and the dashboard overview.
type SearchHandler struct {
	search    *service.SearchService
	dashboard *service.DashboardService
}

func NewSearchHandler(search *service.SearchService, dashboard *service.DashboardService) *SearchHandler {
	return &SearchHandler{search: search, dashboard: dashboard}
}

// Search godoc
// @Summary      Quick search across clients, projects, tasks and touches
// @Tags         search
// @Produce      json
// @Security     CookieAuth
// @Param        q   query  string  true  "At least two characters"
// @Success      200  {object}  domain.SearchResults
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.search.Search(c.Request.Context(), currentWorkspace(c), c.Query("q"))
	if err != nil {
		writeError(c, err, "search failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Dashboard godoc
// @Summary      Workspace overview
// @Tags         dashboard
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  domain.DashboardMetrics
// @Router       /dashboard/metrics [get]
func (h *SearchHandler) Dashboard(c *gin.Context) {
	m, err := h.dashboard.Metrics(c.Request.Context(), currentWorkspace(c))
	if err != nil {
		writeError(c, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, m)
}

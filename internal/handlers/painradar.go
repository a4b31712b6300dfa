package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/dto"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

// PainRadarHandler serves keyword tracking, scans, pain extraction and the
// ad-hoc quick and niche searches.
type PainRadarHandler struct {
	svc *service.PainRadarService
}

func NewPainRadarHandler(svc *service.PainRadarService) *PainRadarHandler {
	return &PainRadarHandler{svc: svc}
}

// CreateKeyword godoc
// @Summary      Track a keyword
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.CreateKeywordRequest  true  "Keyword"
// @Success      201  {object}  dto.KeywordResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      409  {object}  map[string]string
// @Router       /pain-radar/keywords [post]
func (h *PainRadarHandler) CreateKeyword(c *gin.Context) {
	var req dto.CreateKeywordRequest
	if !bindJSON(c, &req) {
		return
	}
	k, err := h.svc.CreateKeyword(c.Request.Context(), currentWorkspace(c), currentUser(c), req.Keyword, req.Category, req.IsActive)
	if err != nil {
		writeError(c, err, "failed to create keyword")
		return
	}
	c.JSON(http.StatusCreated, keywordToResponse(k))
}

// ListKeywords godoc
// @Summary      Tracked keywords
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListKeywordsResponse
// @Router       /pain-radar/keywords [get]
func (h *PainRadarHandler) ListKeywords(c *gin.Context) {
	list, err := h.svc.ListKeywords(c.Request.Context(), currentWorkspace(c))
	if err != nil {
		writeError(c, err, "failed to list keywords")
		return
	}
	items := make([]dto.KeywordResponse, len(list))
	for i := range list {
		items[i] = keywordToResponse(list[i])
	}
	c.JSON(http.StatusOK, dto.ListKeywordsResponse{Items: items})
}

// UpdateKeyword godoc
// @Summary      Update a tracked keyword
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  string                    true  "Keyword ID"
// @Param        body  body  dto.UpdateKeywordRequest  true  "Fields to change"
// @Success      200  {object}  dto.KeywordResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      404  {object}  map[string]string
// @Router       /pain-radar/keywords/{id} [patch]
func (h *PainRadarHandler) UpdateKeyword(c *gin.Context) {
	var req dto.UpdateKeywordRequest
	if !bindJSON(c, &req) {
		return
	}
	k, err := h.svc.UpdateKeyword(c.Request.Context(), currentWorkspace(c), c.Param("id"), service.KeywordPatch{
		Keyword:  req.Keyword,
		Category: req.Category,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(c, err, "failed to update keyword")
		return
	}
	c.JSON(http.StatusOK, keywordToResponse(k))
}

// DeleteKeyword godoc
// @Summary      Stop tracking a keyword
// @Description  Deletes the keyword together with its posts and their pains.
// @Tags         pain-radar
// @Security     CookieAuth
// @Param        id   path  string  true  "Keyword ID"
// @Success      204
// @Router       /pain-radar/keywords/{id} [delete]
func (h *PainRadarHandler) DeleteKeyword(c *gin.Context) {
	if err := h.svc.DeleteKeyword(c.Request.Context(), currentWorkspace(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete keyword")
		return
	}
	c.Status(http.StatusNoContent)
}

// StartScan godoc
// @Summary      Start a background scan
// @Description  Returns the RUNNING scan immediately; poll GET /pain-radar/scan/{id} for the result.
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.StartScanRequest  true  "Scan"
// @Success      202  {object}  dto.ScanResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      404  {object}  map[string]string
// @Router       /pain-radar/scan [post]
func (h *PainRadarHandler) StartScan(c *gin.Context) {
	var req dto.StartScanRequest
	if !bindJSON(c, &req) {
		return
	}
	scan, err := h.svc.StartScan(c.Request.Context(), currentWorkspace(c), currentUser(c), req.KeywordID,
		enumOf[dom.Platform](req.Platform), req.Limit)
	if err != nil {
		writeError(c, err, "failed to start scan")
		return
	}
	c.JSON(http.StatusAccepted, scanToResponse(scan))
}

// GetScan godoc
// @Summary      Scan status
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Scan ID"
// @Success      200  {object}  dto.ScanResponse
// @Failure      404  {object}  map[string]string
// @Router       /pain-radar/scan/{id} [get]
func (h *PainRadarHandler) GetScan(c *gin.Context) {
	scan, err := h.svc.GetScan(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get scan")
		return
	}
	c.JSON(http.StatusOK, scanToResponse(scan))
}

// ListPosts godoc
// @Summary      Collected posts
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        keywordId   query  string  false  "Keyword ID"
// @Param        isAnalyzed  query  bool    false  "Analysis state"
// @Param        search      query  string  false  "Text in title or content"
// @Param        limit       query  int     false  "Page size, at most 100"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {object}  dto.ListPostsResponse
// @Router       /pain-radar/posts [get]
func (h *PainRadarHandler) ListPosts(c *gin.Context) {
	f := dom.PostFilter{KeywordID: c.Query("keywordId"), Search: c.Query("search")}
	if raw := c.Query("isAnalyzed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid isAnalyzed"})
			return
		}
		f.IsAnalyzed = &v
	}
	var ok bool
	if f.Limit, ok = queryInt(c, "limit", 0); !ok {
		return
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return
	}
	list, total, err := h.svc.ListPosts(c.Request.Context(), currentWorkspace(c), f)
	if err != nil {
		writeError(c, err, "failed to list posts")
		return
	}
	items := make([]dto.PostResponse, len(list))
	for i := range list {
		items[i] = postToResponse(list[i])
	}
	limit, offset := service.Page(f.Limit, f.Offset)
	c.JSON(http.StatusOK, dto.ListPostsResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Analyze godoc
// @Summary      Extract pains from posts
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.AnalyzeRequest  true  "Posts, at most 100"
// @Success      200  {object}  dto.AnalyzeResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  dto.PainErrorResponse
// @Router       /pain-radar/analyze [post]
func (h *PainRadarHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.Analyze(c.Request.Context(), currentWorkspace(c), req.PostIDs)
	if err != nil {
		writeError(c, err, "analysis failed")
		return
	}
	c.JSON(http.StatusOK, dto.AnalyzeResponse{
		Analyzed:       res.Analyzed,
		PainsExtracted: res.PainsExtracted,
		FailedBatches:  res.FailedBatches,
	})
}

// ListPains godoc
// @Summary      Extracted pains
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        category   query  string  false  "Category"
// @Param        severity   query  string  false  "Severity"
// @Param        keywordId  query  string  false  "Keyword ID"
// @Param        limit      query  int     false  "Page size, at most 100"
// @Param        offset     query  int     false  "Offset"
// @Success      200  {object}  dto.ListPainsResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Router       /pain-radar/pains [get]
func (h *PainRadarHandler) ListPains(c *gin.Context) {
	f := dom.PainFilter{
		Category:  enumOf[dom.PainCategory](c.Query("category")),
		Severity:  enumOf[dom.PainSeverity](c.Query("severity")),
		KeywordID: c.Query("keywordId"),
	}
	var ok bool
	if f.Limit, ok = queryInt(c, "limit", 0); !ok {
		return
	}
	if f.Offset, ok = queryInt(c, "offset", 0); !ok {
		return
	}
	list, total, err := h.svc.ListPains(c.Request.Context(), currentWorkspace(c), f)
	if err != nil {
		writeError(c, err, "failed to list pains")
		return
	}
	limit, offset := service.Page(f.Limit, f.Offset)
	c.JSON(http.StatusOK, dto.ListPainsResponse{Items: painsToResponse(list), Total: total, Limit: limit, Offset: offset})
}

// GetPain godoc
// @Summary      Extracted pain with its post
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Pain ID"
// @Success      200  {object}  dto.PainResponse
// @Failure      404  {object}  map[string]string
// @Router       /pain-radar/pains/{id} [get]
func (h *PainRadarHandler) GetPain(c *gin.Context) {
	p, err := h.svc.GetPain(c.Request.Context(), currentWorkspace(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to get pain")
		return
	}
	c.JSON(http.StatusOK, painToResponse(p))
}

// DeletePain godoc
// @Summary      Delete an extracted pain
// @Tags         pain-radar
// @Security     CookieAuth
// @Param        id   path  string  true  "Pain ID"
// @Success      204
// @Router       /pain-radar/pains/{id} [delete]
func (h *PainRadarHandler) DeletePain(c *gin.Context) {
	if err := h.svc.DeletePain(c.Request.Context(), currentWorkspace(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete pain")
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard godoc
// @Summary      Pain Radar overview
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        period  query  string  false  "7d, 30d or 90d; 14 days when omitted"
// @Success      200  {object}  dto.PainDashboardResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Router       /pain-radar/dashboard [get]
func (h *PainRadarHandler) Dashboard(c *gin.Context) {
	days, err := periodDays(c.Query("period"))
	if err != nil {
		writeError(c, err, "invalid period")
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), currentWorkspace(c), days)
	if err != nil {
		writeError(c, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.PainDashboardResponse{PainDashboard: d, TopPains: painsToResponse(d.TopPains)})
}

// QuickSearch godoc
// @Summary      Search platforms without storing anything
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.QuickSearchRequest  true  "Query"
// @Success      200  {object}  painradar.QuickSearchResult
// @Failure      400  {object}  dto.PainErrorResponse
// @Router       /pain-radar/quick-search [post]
func (h *PainRadarHandler) QuickSearch(c *gin.Context) {
	var req dto.QuickSearchRequest
	if !bindJSON(c, &req) {
		return
	}
	dedupe := true
	if req.Dedupe != nil {
		dedupe = *req.Dedupe
	}
	res, err := h.svc.QuickSearch(c.Request.Context(), painradar.QuickSearchRequest{
		Query:         req.Query,
		Platforms:     platformsOf(req.Platforms),
		Limit:         req.Limit,
		MinEngagement: req.MinEngagement,
		Dedupe:        dedupe,
	})
	if err != nil {
		writeError(c, err, "search failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// Niche godoc
// @Summary      Analyse the pains of a niche
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.NicheRequest  true  "Niche"
// @Success      200  {object}  painradar.NicheResult
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      500  {object}  dto.PainErrorResponse
// @Router       /pain-radar/niche [post]
func (h *PainRadarHandler) Niche(c *gin.Context) {
	var req dto.NicheRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.AnalyzeNiche(c.Request.Context(), req.Niche, platformsOf(req.Platforms), req.Limit)
	if err != nil {
		writeError(c, err, "niche analysis failed")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GenerateMessage godoc
// @Summary      Write sales messages for a pain
// @Tags         pain-radar
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body  dto.GenerateMessageRequest  true  "Problem, niche and tone"
// @Success      200  {object}  dto.GenerateMessageResponse
// @Failure      400  {object}  dto.PainErrorResponse
// @Failure      500  {object}  dto.PainErrorResponse
// @Router       /pain-radar/generate-message [post]
func (h *PainRadarHandler) GenerateMessage(c *gin.Context) {
	var req dto.GenerateMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	variants, err := h.svc.GenerateMessage(c.Request.Context(), llm.MessageBrief{
		Problem:  req.Problem,
		Niche:    req.Niche,
		Solution: req.Solution,
		Tone:     llm.Tone(strings.ToLower(strings.TrimSpace(req.Tone))),
	})
	if err != nil {
		writeError(c, err, "message generation failed")
		return
	}
	c.JSON(http.StatusOK, dto.GenerateMessageResponse{Message: variants[0], Variants: variants})
}

// MatchProjects godoc
// @Summary      Projects solving a similar pain
// @Tags         pain-radar
// @Produce      json
// @Security     CookieAuth
// @Param        id   path  string  true  "Pain ID"
// @Success      200  {object}  dto.MatchProjectsResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  dto.PainErrorResponse
// @Router       /pain-radar/pains/{id}/match-projects [post]
func (h *PainRadarHandler) MatchProjects(c *gin.Context) {
	res, err := h.svc.MatchProjects(c.Request.Context(), currentWorkspace(c), currentUser(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "project matching failed")
		return
	}
	c.JSON(http.StatusOK, matchesToResponse(res))
}

func matchesToResponse(res service.MatchResult) dto.MatchProjectsResponse {
	out := dto.MatchProjectsResponse{
		Projects:      make([]dto.ProjectMatchResponse, len(res.Matches)),
		TotalProjects: res.TotalProjects,
		MatchesFound:  len(res.Matches),
	}
	for i, m := range res.Matches {
		out.Projects[i] = dto.ProjectMatchResponse{
			ProjectID:  m.Project.ID,
			Similarity: m.Similarity,
			Project: dto.MatchedProject{
				ID:        m.Project.ID,
				Name:      m.Project.Name,
				Pain:      m.Project.PainDescription,
				Status:    string(m.Project.Status),
				CreatedAt: m.Project.CreatedAt,
			},
		}
	}
	return out
}

// periodDays turns the dashboard period parameter into a number of days.
func periodDays(period string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "":
		return 0, nil
	case "7d":
		return 7, nil
	case "30d":
		return 30, nil
	case "90d":
		return 90, nil
	}
	return 0, painradar.ValidationError("period must be 7d, 30d or 90d")
}

func platformsOf(in []string) []dom.Platform {
	out := make([]dom.Platform, 0, len(in))
	for _, p := range in {
		out = append(out, enumOf[dom.Platform](p))
	}
	return out
}

func keywordToResponse(k dom.PainKeyword) dto.KeywordResponse {
	return dto.KeywordResponse{
		ID:        k.ID,
		Keyword:   k.Keyword,
		Category:  k.Category,
		IsActive:  k.IsActive,
		PostCount: k.PostCount,
		CreatedAt: k.CreatedAt,
		UpdatedAt: k.UpdatedAt,
	}
}

func scanToResponse(s dom.PainScan) dto.ScanResponse {
	return dto.ScanResponse{
		ID:           s.ID,
		KeywordID:    s.KeywordID,
		Platform:     string(s.Platform),
		Status:       string(s.Status),
		PostsFound:   s.PostsFound,
		PostsNew:     s.PostsNew,
		ErrorMessage: s.ErrorMessage,
		StartedAt:    s.StartedAt,
		CompletedAt:  s.CompletedAt,
	}
}

func postToResponse(p dom.SocialPost) dto.PostResponse {
	return dto.PostResponse{
		ID:          p.ID,
		KeywordID:   p.KeywordID,
		Keyword:     p.Keyword,
		Platform:    string(p.Platform),
		PlatformID:  p.PlatformID,
		Author:      p.Author,
		AuthorURL:   p.AuthorURL,
		Title:       p.Title,
		Content:     p.Content,
		URL:         p.URL,
		Likes:       p.Likes,
		Comments:    p.Comments,
		Shares:      p.Shares,
		Engagement:  p.Engagement,
		PublishedAt: p.PublishedAt,
		IsAnalyzed:  p.IsAnalyzed,
		AnalyzedAt:  p.AnalyzedAt,
	}
}

func painToResponse(p dom.ExtractedPain) dto.PainResponse {
	resp := dto.PainResponse{
		ID:         p.ID,
		PostID:     p.PostID,
		PainText:   p.PainText,
		Category:   string(p.Category),
		Severity:   string(p.Severity),
		Sentiment:  p.Sentiment,
		Confidence: p.Confidence,
		Keywords:   p.Keywords,
		Context:    p.Context,
		CreatedAt:  p.CreatedAt,
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if p.Post != nil {
		post := postToResponse(*p.Post)
		resp.Post = &post
	}
	return resp
}

func painsToResponse(list []dom.ExtractedPain) []dto.PainResponse {
	out := make([]dto.PainResponse, len(list))
	for i := range list {
		out[i] = painToResponse(list[i])
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/observability"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/utils"
)

const (
	maxKeywordLen      = 100
	defaultScanLimit   = 50
	maxScanLimit       = 100
	analyzeBatchSize   = 10
	maxAnalyzePosts    = 100
	painContextLen     = 500
	defaultPainPage    = 20
	maxPainPage        = 100
	defaultTrendDays   = 14
	defaultScanTimeout = 5 * time.Minute
)

// PainModel is the LLM surface Pain Radar uses; *llm.Client implements it.
type PainModel interface {
	painradar.NicheModel
	Configured() bool
	TranslateToEnglish(ctx context.Context, text string) string
	ExtractPains(ctx context.Context, posts []llm.PostInput, searchContext string) ([]llm.PostPains, error)
	GenerateMessages(ctx context.Context, brief llm.MessageBrief) ([]string, error)
	MatchProjects(ctx context.Context, painText string, projects []llm.ProjectPain) ([]llm.ProjectMatch, error)
}

// KeywordPatch is a partial keyword update.
type KeywordPatch struct {
	Keyword  *string
	Category *string
	IsActive *bool
}

// AnalyzeResult summarises an extraction run.
type AnalyzeResult struct {
	Analyzed       int `json:"analyzed"`
	PainsExtracted int `json:"painsExtracted"`
	FailedBatches  int `json:"failedBatches"`
}

// ProjectMatch is a workspace project whose pain resembles an extracted one.
type ProjectMatch struct {
	Project    dom.Project
	Similarity float64
}

// MatchResult lists the matches above the similarity threshold.
type MatchResult struct {
	Matches       []ProjectMatch
	TotalProjects int
}

// PainRadarService manages tracked keywords, background scans, LLM pain
// extraction and the ad-hoc searches.
type PainRadarService struct {
	repo     repo.PainRepo
	searcher *painradar.Searcher
	model    PainModel
	hooks    Hooks
	sem      chan struct{}
	timeout  time.Duration
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewPainRadarService returns a service that runs at most maxConcurrent scans
// at once, each bounded by timeout.
func NewPainRadarService(r repo.PainRepo, searcher *painradar.Searcher, model PainModel, hooks Hooks,
	maxConcurrent int, timeout time.Duration) *PainRadarService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}
	return &PainRadarService{
		repo:     r,
		searcher: searcher,
		model:    model,
		hooks:    hooks,
		sem:      make(chan struct{}, maxConcurrent),
		timeout:  timeout,
		now:      time.Now,
	}
}

// keywords

func (s *PainRadarService) CreateKeyword(ctx context.Context, workspaceID, actorID, keyword, category string, active *bool) (dom.PainKeyword, error) {
	k := dom.PainKeyword{
		WorkspaceID: workspaceID,
		Keyword:     keyword,
		Category:    strings.TrimSpace(category),
		IsActive:    active == nil || *active,
		CreatedByID: actorID,
	}
	if err := validateKeyword(&k); err != nil {
		return dom.PainKeyword{}, err
	}
	created, err := s.repo.CreateKeyword(ctx, k)
	if err != nil {
		return dom.PainKeyword{}, storeErr(err)
	}
	return created, nil
}

func (s *PainRadarService) ListKeywords(ctx context.Context, workspaceID string) ([]dom.PainKeyword, error) {
	return s.repo.ListKeywords(ctx, workspaceID)
}

func (s *PainRadarService) UpdateKeyword(ctx context.Context, workspaceID, id string, p KeywordPatch) (dom.PainKeyword, error) {
	k, err := s.repo.GetKeyword(ctx, workspaceID, id)
	if err != nil {
		return dom.PainKeyword{}, storeErr(err)
	}
	if p.Keyword != nil {
		k.Keyword = *p.Keyword
	}
	if p.Category != nil {
		k.Category = strings.TrimSpace(*p.Category)
	}
	if p.IsActive != nil {
		k.IsActive = *p.IsActive
	}
	if err := validateKeyword(&k); err != nil {
		return dom.PainKeyword{}, err
	}
	updated, err := s.repo.UpdateKeyword(ctx, k)
	return updated, storeErr(err)
}

func (s *PainRadarService) DeleteKeyword(ctx context.Context, workspaceID, id string) error {
	return storeErr(s.repo.DeleteKeyword(ctx, workspaceID, id))
}

func validateKeyword(k *dom.PainKeyword) error {
	k.Keyword = strings.TrimSpace(k.Keyword)
	if k.Keyword == "" {
		return painradar.ValidationError("Keyword is required")
	}
	if utf8.RuneCountInString(k.Keyword) > maxKeywordLen {
		return painradar.ValidationError("Keyword must be at most 100 characters")
	}
	return nil
}

// scans

// StartScan records a RUNNING scan and runs it in the background.
func (s *PainRadarService) StartScan(ctx context.Context, workspaceID, actorID, keywordID string, p dom.Platform, limit int) (dom.PainScan, error) {
	scan, k, limit, err := s.prepareScan(ctx, workspaceID, keywordID, p, limit)
	if err != nil {
		return dom.PainScan{}, err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.runScan(ctx, actorID, scan, k, limit)
	}()
	return scan, nil
}

// Scan runs a scan to completion and returns its final state.
func (s *PainRadarService) Scan(ctx context.Context, workspaceID, actorID, keywordID string, p dom.Platform, limit int) (dom.PainScan, error) {
	scan, k, limit, err := s.prepareScan(ctx, workspaceID, keywordID, p, limit)
	if err != nil {
		return dom.PainScan{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.runScan(ctx, actorID, scan, k, limit), nil
}

// Wait blocks until background scans have finished.
func (s *PainRadarService) Wait() { s.wg.Wait() }

func (s *PainRadarService) prepareScan(ctx context.Context, workspaceID, keywordID string, p dom.Platform, limit int) (dom.PainScan, dom.PainKeyword, int, error) {
	if p == "" {
		p = dom.PlatformReddit
	}
	if !p.Valid() || !s.searcher.Supports(p) {
		return dom.PainScan{}, dom.PainKeyword{}, 0, painradar.ValidationError(fmt.Sprintf("platform %s is not supported", p))
	}
	switch {
	case limit <= 0:
		limit = defaultScanLimit
	case limit > maxScanLimit:
		return dom.PainScan{}, dom.PainKeyword{}, 0, painradar.ValidationError("limit must be at most 100")
	}
	k, err := s.repo.GetKeyword(ctx, workspaceID, keywordID)
	if err != nil {
		return dom.PainScan{}, dom.PainKeyword{}, 0, storeErr(err)
	}
	if !k.IsActive {
		return dom.PainScan{}, dom.PainKeyword{}, 0, painradar.ValidationError("Keyword is not active")
	}
	scan, err := s.repo.CreateScan(ctx, dom.PainScan{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		KeywordID:   k.ID,
		Platform:    p,
		Status:      dom.ScanRunning,
		StartedAt:   s.now().UTC(),
	})
	if err != nil {
		return dom.PainScan{}, dom.PainKeyword{}, 0, storeErr(err)
	}
	return scan, k, limit, nil
}

func (s *PainRadarService) runScan(ctx context.Context, actorID string, scan dom.PainScan, k dom.PainKeyword, limit int) dom.PainScan {
	log := s.hooks.logger().With(zap.String("scan", scan.ID), zap.String("platform", string(scan.Platform)))

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return s.finishScan(log, scan, 0, 0, ctx.Err())
	}

	query := k.Keyword
	if scan.Platform == dom.PlatformReddit && s.model != nil {
		query = s.model.TranslateToEnglish(ctx, query)
	}
	posts, err := s.searcher.Fetch(ctx, scan.Platform, query, limit)
	if err != nil {
		return s.finishScan(log, scan, 0, 0, err)
	}

	var inserted int
	for _, p := range posts {
		res, err := s.repo.UpsertPost(ctx, p.SocialPost(k.ID))
		if err != nil {
			if ctx.Err() != nil {
				return s.finishScan(log, scan, len(posts), inserted, ctx.Err())
			}
			log.Warn("store post", zap.String("post", p.PlatformID), zap.Error(err))
			continue
		}
		if res == dom.PostInserted {
			inserted++
		}
	}
	scan = s.finishScan(log, scan, len(posts), inserted, nil)
	s.hooks.activity(context.WithoutCancel(ctx), dom.Activity{
		WorkspaceID: scan.WorkspaceID,
		UserID:      actorID,
		Type:        dom.ActivityCreate,
		EntityType:  "pain_scan",
		EntityID:    scan.ID,
		Action:      fmt.Sprintf("Pain Radar scan of %q on %s: %d posts, %d new", k.Keyword, scan.Platform, scan.PostsFound, scan.PostsNew),
	})
	return scan
}

// finishScan stores the final state of scan. It uses a fresh context so a
// timed-out scan can still be marked FAILED.
func (s *PainRadarService) finishScan(log *zap.Logger, scan dom.PainScan, found, inserted int, cause error) dom.PainScan {
	now := s.now().UTC()
	scan.CompletedAt = &now
	scan.PostsFound = found
	scan.PostsNew = inserted
	scan.Status = dom.ScanCompleted
	if cause != nil {
		scan.Status = dom.ScanFailed
		scan.ErrorMessage = cause.Error()
		if errors.Is(cause, context.DeadlineExceeded) {
			scan.ErrorMessage = "scan timed out"
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.repo.FinishScan(ctx, scan); err != nil {
		log.Error("finish scan", zap.Error(err))
	}
	observability.RecordScan(string(scan.Platform), string(scan.Status))
	log.Info("scan finished", zap.String("status", string(scan.Status)),
		zap.Int("found", found), zap.Int("new", inserted), zap.String("error", scan.ErrorMessage))
	return scan
}

func (s *PainRadarService) GetScan(ctx context.Context, workspaceID, id string) (dom.PainScan, error) {
	scan, err := s.repo.GetScan(ctx, workspaceID, id)
	return scan, storeErr(err)
}

// posts and pains

func (s *PainRadarService) ListPosts(ctx context.Context, workspaceID string, f dom.PostFilter) ([]dom.SocialPost, int, error) {
	f.Limit, f.Offset = Page(f.Limit, f.Offset)
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.ListPosts(ctx, workspaceID, f)
}

// Analyze extracts pains from the given posts of the workspace in batches of
// ten. A failing batch is logged and skipped.
func (s *PainRadarService) Analyze(ctx context.Context, workspaceID string, postIDs []string) (AnalyzeResult, error) {
	postIDs = compactIDs(postIDs)
	if len(postIDs) == 0 {
		return AnalyzeResult{}, painradar.ValidationError("postIds is required")
	}
	if len(postIDs) > maxAnalyzePosts {
		return AnalyzeResult{}, painradar.ValidationError("at most 100 posts per request")
	}
	if s.model == nil || !s.model.Configured() {
		return AnalyzeResult{}, painradar.AIError(llm.ErrNotConfigured)
	}
	posts, err := s.repo.PostsByIDs(ctx, workspaceID, postIDs)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if len(posts) == 0 {
		return AnalyzeResult{}, ErrNotFound
	}

	var res AnalyzeResult
	log := s.hooks.logger()
	for start := 0; start < len(posts); start += analyzeBatchSize {
		batch := posts[start:min(start+analyzeBatchSize, len(posts))]
		n, err := s.analyzeBatch(ctx, workspaceID, batch)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Warn("pain extraction batch failed", zap.Int("offset", start), zap.Error(err))
			res.FailedBatches++
			continue
		}
		res.Analyzed += len(batch)
		res.PainsExtracted += n
	}
	return res, nil
}

func (s *PainRadarService) analyzeBatch(ctx context.Context, workspaceID string, batch []dom.SocialPost) (int, error) {
	inputs := make([]llm.PostInput, len(batch))
	byID := make(map[string]dom.SocialPost, len(batch))
	for i, p := range batch {
		content := p.Content
		if p.Title != "" && !strings.HasPrefix(content, p.Title) {
			content = p.Title + "\n\n" + content
		}
		inputs[i] = llm.PostInput{ID: p.ID, Author: p.Author, Content: content}
		byID[p.ID] = p
	}
	found, err := s.model.ExtractPains(ctx, inputs, batch[0].Keyword)
	if err != nil {
		return 0, err
	}
	var pains []dom.ExtractedPain
	for _, pp := range found {
		post, ok := byID[pp.PostID]
		if !ok {
			continue
		}
		for _, p := range pp.Pains {
			pains = append(pains, dom.ExtractedPain{
				WorkspaceID: workspaceID,
				PostID:      post.ID,
				PainText:    p.PainText,
				Category:    p.Category,
				Severity:    p.Severity,
				Sentiment:   p.Sentiment,
				Confidence:  p.Confidence,
				Keywords:    p.Keywords,
				Context:     utils.TruncateRunes(post.Content, painContextLen),
			})
		}
	}
	if err := s.repo.CreatePains(ctx, pains); err != nil {
		return 0, err
	}
	ids := make([]string, len(batch))
	for i, p := range batch {
		ids[i] = p.ID
	}
	if err := s.repo.MarkAnalyzed(ctx, ids, s.now().UTC()); err != nil {
		return 0, err
	}
	return len(pains), nil
}

func (s *PainRadarService) ListPains(ctx context.Context, workspaceID string, f dom.PainFilter) ([]dom.ExtractedPain, int, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, 0, painradar.ValidationError("invalid category")
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return nil, 0, painradar.ValidationError("invalid severity")
	}
	f.Limit, f.Offset = Page(f.Limit, f.Offset)
	return s.repo.ListPains(ctx, workspaceID, f)
}

func (s *PainRadarService) GetPain(ctx context.Context, workspaceID, id string) (dom.ExtractedPain, error) {
	p, err := s.repo.GetPain(ctx, workspaceID, id)
	return p, storeErr(err)
}

func (s *PainRadarService) DeletePain(ctx context.Context, workspaceID, id string) error {
	return storeErr(s.repo.DeletePain(ctx, workspaceID, id))
}

// Dashboard aggregates the last days of extracted pains (14 by default).
func (s *PainRadarService) Dashboard(ctx context.Context, workspaceID string, days int) (dom.PainDashboard, error) {
	if days <= 0 {
		days = defaultTrendDays
	}
	since := startOfDay(s.now(), time.UTC).AddDate(0, 0, -(days - 1))
	d, err := s.repo.Dashboard(ctx, workspaceID, since)
	if err != nil {
		return dom.PainDashboard{}, err
	}
	d.PeriodDays = days
	return d, nil
}

// ad-hoc searches

func (s *PainRadarService) QuickSearch(ctx context.Context, req painradar.QuickSearchRequest) (painradar.QuickSearchResult, error) {
	req.Query = strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(req.Query) < minSearchLen {
		return painradar.QuickSearchResult{}, painradar.ValidationError("Query must be at least 2 characters")
	}
	if err := s.checkPlatforms(req.Platforms); err != nil {
		return painradar.QuickSearchResult{}, err
	}
	req.Limit = min(req.Limit, maxScanLimit)
	req.MinEngagement = max(req.MinEngagement, 0)
	return s.searcher.QuickSearch(ctx, req), nil
}

func (s *PainRadarService) AnalyzeNiche(ctx context.Context, niche string, platforms []dom.Platform, limit int) (painradar.NicheResult, error) {
	niche = strings.TrimSpace(niche)
	if utf8.RuneCountInString(niche) < minSearchLen {
		return painradar.NicheResult{}, painradar.ValidationError("Niche must be at least 2 characters")
	}
	if err := s.checkPlatforms(platforms); err != nil {
		return painradar.NicheResult{}, err
	}
	if s.model == nil || !s.model.Configured() {
		return painradar.NicheResult{}, painradar.AIError(llm.ErrNotConfigured)
	}
	return s.searcher.AnalyzeNiche(ctx, s.model, niche, platforms, min(limit, maxScanLimit))
}

func (s *PainRadarService) checkPlatforms(platforms []dom.Platform) error {
	for _, p := range platforms {
		if !p.Valid() || !s.searcher.Supports(p) {
			return painradar.ValidationError(fmt.Sprintf("platform %s is not supported", p))
		}
	}
	return nil
}

// Page clamps a Pain Radar listing page to 1..100 items, 20 by default.
func Page(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = defaultPainPage
	case limit > maxPainPage:
		limit = maxPainPage
	}
	return limit, max(offset, 0)
}

// GenerateMessage writes sales message variants for a pain. The first
// variant is the suggested one.
func (s *PainRadarService) GenerateMessage(ctx context.Context, brief llm.MessageBrief) ([]string, error) {
	brief.Problem = strings.TrimSpace(brief.Problem)
	brief.Niche = strings.TrimSpace(brief.Niche)
	brief.Solution = strings.TrimSpace(brief.Solution)
	if brief.Problem == "" || brief.Niche == "" {
		return nil, painradar.ValidationError("Problem and niche required")
	}
	if brief.Tone == "" {
		brief.Tone = llm.ToneEmpathetic
	}
	if !brief.Tone.Valid() {
		return nil, painradar.ValidationError("tone must be professional, casual or empathetic")
	}
	if s.model == nil || !s.model.Configured() {
		return nil, painradar.AIError(llm.ErrNotConfigured)
	}
	variants, err := s.model.GenerateMessages(ctx, brief)
	if err != nil {
		return nil, painradar.AIError(err)
	}
	return variants, nil
}

// MatchProjects compares an extracted pain with the pain descriptions of the
// workspace projects.
func (s *PainRadarService) MatchProjects(ctx context.Context, workspaceID, actorID, painID string) (MatchResult, error) {
	pain, err := s.repo.GetPain(ctx, workspaceID, painID)
	if err != nil {
		return MatchResult{}, storeErr(err)
	}
	projects, err := s.repo.ProjectsWithPain(ctx, workspaceID)
	if err != nil {
		return MatchResult{}, err
	}
	res := MatchResult{Matches: []ProjectMatch{}, TotalProjects: len(projects)}
	if len(projects) == 0 {
		return res, nil
	}
	if s.model == nil || !s.model.Configured() {
		return MatchResult{}, painradar.AIError(llm.ErrNotConfigured)
	}

	inputs := make([]llm.ProjectPain, len(projects))
	byID := make(map[string]dom.Project, len(projects))
	for i, p := range projects {
		inputs[i] = llm.ProjectPain{ID: p.ID, Name: p.Name, Pain: p.PainDescription}
		byID[p.ID] = p
	}
	matches, err := s.model.MatchProjects(ctx, pain.PainText, inputs)
	if err != nil {
		return MatchResult{}, painradar.AIError(err)
	}
	for _, m := range matches {
		p, ok := byID[m.ProjectID]
		if !ok || m.Similarity < llm.MinSimilarity {
			continue
		}
		res.Matches = append(res.Matches, ProjectMatch{Project: p, Similarity: m.Similarity})
	}
	sort.SliceStable(res.Matches, func(i, j int) bool { return res.Matches[i].Similarity > res.Matches[j].Similarity })

	s.hooks.activity(ctx, dom.Activity{
		WorkspaceID: workspaceID,
		UserID:      actorID,
		Type:        dom.ActivityCreate,
		EntityType:  "extracted_pain",
		EntityID:    painID,
		Action:      "pain_radar.match_projects",
		NewValue:    jsonValue(map[string]int{"matchesFound": len(res.Matches), "totalProjects": res.TotalProjects}),
	})
	return res, nil
}

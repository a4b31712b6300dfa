package painradar

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/observability"
)

// DefaultQuickPlatforms are searched when a quick search names none.
var DefaultQuickPlatforms = []dom.Platform{dom.PlatformHackerNews, dom.PlatformHabr, dom.PlatformReddit}

// PlatformError records a platform that failed during a multi-platform search.
type PlatformError struct {
	Platform dom.Platform `json:"platform"`
	Error    string       `json:"error"`
}

// SearchResult is the merged output of several platforms.
type SearchResult struct {
	Posts      []Post
	Total      int
	ByPlatform map[dom.Platform]int
	Errors     []PlatformError
}

// Searcher fans keyword searches out to the configured sources, throttled by
// a shared limiter and retried on transient failures.
type Searcher struct {
	sources  map[dom.Platform]Source
	limiter  *Limiter
	attempts int
	backoff  time.Duration
	log      *zap.Logger
}

func NewSearcher(limiter *Limiter, log *zap.Logger, sources ...Source) *Searcher {
	if limiter == nil {
		limiter = NewLimiter()
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Searcher{
		sources:  make(map[dom.Platform]Source, len(sources)),
		limiter:  limiter,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		log:      log,
	}
	for _, src := range sources {
		s.sources[src.Platform()] = src
	}
	return s
}

// WithBackoff overrides the retry policy.
func (s *Searcher) WithBackoff(attempts int, base time.Duration) *Searcher {
	s.attempts, s.backoff = attempts, base
	return s
}

// Supports reports whether a source is registered for p.
func (s *Searcher) Supports(p dom.Platform) bool {
	_, ok := s.sources[p]
	return ok
}

// Fetch searches one platform, waiting for a rate-limit slot and retrying
// transient failures.
func (s *Searcher) Fetch(ctx context.Context, p dom.Platform, keyword string, limit int) ([]Post, error) {
	src, ok := s.sources[p]
	if !ok {
		return nil, ValidationError(fmt.Sprintf("platform %s is not supported", p))
	}
	posts, err := WithRetry(ctx, s.attempts, s.backoff, func(ctx context.Context) ([]Post, error) {
		if err := s.limiter.Wait(ctx, p); err != nil {
			return nil, err
		}
		return src.Search(ctx, keyword, limit)
	})
	if err != nil {
		s.log.Warn("pain radar search failed", zap.String("platform", string(p)), zap.String("keyword", keyword), zap.Error(err))
		return nil, err
	}
	observability.RecordPostsFetched(string(p), len(posts))
	return posts, nil
}

// SearchAll queries platforms in parallel. A failing platform is reported in
// Errors and does not fail the others. Posts are ordered newest first and
// truncated to limit; Total counts everything fetched.
func (s *Searcher) SearchAll(ctx context.Context, keyword string, platforms []dom.Platform, limit int) SearchResult {
	var (
		mu  sync.Mutex
		all []Post
		res = SearchResult{ByPlatform: map[dom.Platform]int{}, Errors: []PlatformError{}}
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range platforms {
		g.Go(func() error {
			posts, err := s.Fetch(gctx, p, keyword, limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors = append(res.Errors, PlatformError{Platform: p, Error: err.Error()})
				return nil
			}
			all = append(all, posts...)
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	for _, p := range all {
		res.ByPlatform[p.Platform]++
	}
	res.Total = len(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	res.Posts = all
	return res
}

// QuickSearchRequest is an ad-hoc search that stores nothing.
type QuickSearchRequest struct {
	Query         string
	Platforms     []dom.Platform
	Limit         int
	MinEngagement int
	Dedupe        bool
}

type QuickSearchStats struct {
	Total           int                  `json:"total"`
	AfterFilter     int                  `json:"afterFilter"`
	ByPlatform      map[dom.Platform]int `json:"byPlatform"`
	AvgEngagement   int                  `json:"avgEngagement"`
	AvgProblemScore int                  `json:"avgProblemScore"`
	Errors          []PlatformError      `json:"errors"`
}

type QuickSearchResult struct {
	Query       string           `json:"query"`
	Posts       []ScoredPost     `json:"posts"`
	TopProblems []ScoredPost     `json:"topProblems"`
	Stats       QuickSearchStats `json:"stats"`
}

// QuickSearch fetches twice the limit, optionally dedups, filters by
// engagement, ranks and truncates. Stats.Total counts the posts kept from the
// fetch, after the cut to twice the limit.
func (s *Searcher) QuickSearch(ctx context.Context, req QuickSearchRequest) QuickSearchResult {
	if len(req.Platforms) == 0 {
		req.Platforms = DefaultQuickPlatforms
	}
	if req.Limit <= 0 {
		req.Limit = 50
	}

	found := s.SearchAll(ctx, req.Query, req.Platforms, req.Limit*2)
	posts := found.Posts
	if req.Dedupe {
		posts = Deduplicate(posts)
	}
	if req.MinEngagement > 0 {
		posts = FilterByEngagement(posts, req.MinEngagement)
	}
	ranked := Rank(posts)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}
	avgEng, avgProb := averages(ranked)

	return QuickSearchResult{
		Query:       req.Query,
		Posts:       ranked,
		TopProblems: TopProblems(ranked, 10),
		Stats: QuickSearchStats{
			Total:           len(found.Posts),
			AfterFilter:     len(ranked),
			ByPlatform:      found.ByPlatform,
			AvgEngagement:   avgEng,
			AvgProblemScore: avgProb,
			Errors:          found.Errors,
		},
	}
}

// averages returns the rounded mean engagement and problem scores.
func averages(posts []ScoredPost) (engagement, problem int) {
	if len(posts) == 0 {
		return 0, 0
	}
	var e, p int
	for _, sp := range posts {
		e += sp.EngagementScore
		p += sp.ProblemScore
	}
	n := float64(len(posts))
	return int(math.Round(float64(e) / n)), int(math.Round(float64(p) / n))
}

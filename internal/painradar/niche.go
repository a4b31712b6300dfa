package painradar

import (
	"context"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
)

const (
	nicheKeywords     = 5
	nichePerKeyword   = 20
	defaultNicheLimit = 50
)

// NicheModel is the part of the LLM client niche analysis needs.
type NicheModel interface {
	GenerateKeywords(ctx context.Context, niche string) ([]string, error)
	AnalyzeNiche(ctx context.Context, niche string, posts []llm.NichePost) llm.NicheAnalysis
}

type NicheStats struct {
	TotalFound      int `json:"totalFound"`
	AfterDedup      int `json:"afterDedup"`
	Returned        int `json:"returned"`
	AvgEngagement   int `json:"avgEngagement"`
	AvgProblemScore int `json:"avgProblemScore"`
}

type NicheResult struct {
	Niche    string            `json:"niche"`
	Keywords []string          `json:"keywords"`
	Posts    []ScoredPost      `json:"posts"`
	Analysis llm.NicheAnalysis `json:"analysis"`
	Stats    NicheStats        `json:"stats"`
}

// AnalyzeNiche generates keywords for a niche, searches the first few of
// them, ranks the merged posts and asks the model to summarise the top ones.
func (s *Searcher) AnalyzeNiche(ctx context.Context, model NicheModel, niche string, platforms []dom.Platform, limit int) (NicheResult, error) {
	if len(platforms) == 0 {
		platforms = DefaultQuickPlatforms
	}
	if limit <= 0 {
		limit = defaultNicheLimit
	}
	keywords, err := model.GenerateKeywords(ctx, niche)
	if err != nil {
		return NicheResult{}, AIError(err)
	}

	var all []Post
	for _, kw := range keywords[:min(nicheKeywords, len(keywords))] {
		res := s.SearchAll(ctx, kw, platforms, nichePerKeyword)
		all = append(all, res.Posts...)
	}
	unique := Deduplicate(all)
	ranked := Rank(unique)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	summary := make([]llm.NichePost, 0, len(ranked))
	for _, p := range ranked {
		title := p.Title
		if title == "" {
			title = p.Content
		}
		summary = append(summary, llm.NichePost{Platform: string(p.Platform), Title: title, Likes: p.Likes, Comments: p.Comments})
	}
	avgEng, avgProb := averages(ranked)

	return NicheResult{
		Niche:    niche,
		Keywords: keywords,
		Posts:    ranked,
		Analysis: model.AnalyzeNiche(ctx, niche, summary),
		Stats: NicheStats{
			TotalFound:      len(all),
			AfterDedup:      len(unique),
			Returned:        len(ranked),
			AvgEngagement:   avgEng,
			AvgProblemScore: avgProb,
		},
	}, nil
}

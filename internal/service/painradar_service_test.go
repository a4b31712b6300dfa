package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
)

func samplePosts(p dom.Platform, n int) []painradar.Post {
	out := make([]painradar.Post, n)
	for i := range out {
		id := fmt.Sprintf("%s-%d", p, i)
		out[i] = painradar.Post{ID: id, Platform: p, PlatformID: id, Author: "dev",
			Title: "Struggling with invoices", Content: "We waste hours every week on manual invoicing", CreatedAt: time.Now()}
	}
	return out
}

type painFixture struct {
	svc    *PainRadarService
	repo   *fakePains
	model  *fakeModel
	reddit *fakeSource
	hn     *fakeSource
	acts   *recordedActivities
}

func newPainFixture() painFixture {
	f := painFixture{
		repo: newFakePains(
			dom.PainKeyword{ID: "k1", WorkspaceID: "ws1", Keyword: "счета", IsActive: true},
			dom.PainKeyword{ID: "k2", WorkspaceID: "ws1", Keyword: "paused", IsActive: false},
		),
		model:  &fakeModel{configured: true, failBatch: map[int]bool{}},
		reddit: &fakeSource{platform: dom.PlatformReddit, posts: samplePosts(dom.PlatformReddit, 3)},
		hn:     &fakeSource{platform: dom.PlatformHackerNews, err: painradar.SourceError(dom.PlatformHackerNews, false, errors.New("boom"))},
		acts:   &recordedActivities{},
	}
	searcher := painradar.NewSearcher(nil, nil, f.reddit, f.hn).WithBackoff(1, time.Millisecond)
	f.svc = NewPainRadarService(f.repo, searcher, f.model, Hooks{Activity: f.acts}, 2, time.Minute)
	return f
}

func TestCreateKeyword(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()

	k, err := f.svc.CreateKeyword(ctx, "ws1", "u1", "  crm pain  ", "sales", nil)
	require.NoError(t, err)
	assert.Equal(t, "crm pain", k.Keyword)
	assert.True(t, k.IsActive)

	_, err = f.svc.CreateKeyword(ctx, "ws1", "u1", "crm pain", "", nil)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.CreateKeyword(ctx, "ws1", "u1", " ", "", nil)
	var pe *painradar.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadRequest, pe.Status)
}

func TestScanStoresPostsAndTranslatesRedditKeyword(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()

	scan, err := f.svc.Scan(ctx, "ws1", "u1", "k1", dom.PlatformReddit, 0)
	require.NoError(t, err)
	assert.Equal(t, dom.ScanCompleted, scan.Status)
	assert.Equal(t, 3, scan.PostsFound)
	assert.Equal(t, 3, scan.PostsNew)
	require.NotNil(t, scan.CompletedAt)
	assert.Equal(t, []string{"en:счета"}, f.reddit.queries)

	again, err := f.svc.Scan(ctx, "ws1", "u1", "k1", dom.PlatformReddit, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, again.PostsFound)
	assert.Equal(t, 0, again.PostsNew)

	stored, err := f.svc.GetScan(ctx, "ws1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.ScanCompleted, stored.Status)
}

func TestScanFailureIsRecorded(t *testing.T) {
	f := newPainFixture()
	scan, err := f.svc.Scan(context.Background(), "ws1", "u1", "k1", dom.PlatformHackerNews, 10)
	require.NoError(t, err)
	assert.Equal(t, dom.ScanFailed, scan.Status)
	assert.NotEmpty(t, scan.ErrorMessage)
	assert.Equal(t, []string{"счета"}, f.hn.queries)
}

func TestStartScanRunsInBackground(t *testing.T) {
	f := newPainFixture()
	scan, err := f.svc.StartScan(context.Background(), "ws1", "u1", "k1", dom.PlatformReddit, 2)
	require.NoError(t, err)
	assert.Equal(t, dom.ScanRunning, scan.Status)

	f.svc.Wait()
	stored, err := f.svc.GetScan(context.Background(), "ws1", scan.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.ScanCompleted, stored.Status)
	assert.Equal(t, 2, stored.PostsFound)
}

func TestStartScanValidation(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()
	var pe *painradar.Error

	_, err := f.svc.StartScan(ctx, "ws1", "u1", "k2", dom.PlatformReddit, 0)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, painradar.CodeValidation, pe.Code)

	_, err = f.svc.StartScan(ctx, "ws1", "u1", "k1", dom.PlatformHabr, 0)
	require.ErrorAs(t, err, &pe)

	_, err = f.svc.StartScan(ctx, "ws1", "u1", "k1", dom.PlatformReddit, 101)
	require.ErrorAs(t, err, &pe)

	_, err = f.svc.StartScan(ctx, "ws2", "u1", "k1", dom.PlatformReddit, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyzeBatchesAndSkipsFailures(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()
	f.reddit.posts = samplePosts(dom.PlatformReddit, 25)
	_, err := f.svc.Scan(ctx, "ws1", "u1", "k1", dom.PlatformReddit, 25)
	require.NoError(t, err)

	ids := make([]string, 0, 25)
	for i := 1; i <= 25; i++ {
		ids = append(ids, fmt.Sprintf("p%d", i))
	}
	f.model.failBatch[1] = true

	res, err := f.svc.Analyze(ctx, "ws1", ids)
	require.NoError(t, err)
	require.Len(t, f.model.batches, 3)
	assert.Len(t, f.model.batches[0], 10)
	assert.Len(t, f.model.batches[2], 5)
	assert.Equal(t, 15, res.Analyzed)
	assert.Equal(t, 15, res.PainsExtracted)
	assert.Equal(t, 1, res.FailedBatches)
	assert.Len(t, f.repo.analyzed, 15)
	for _, p := range f.repo.pains {
		assert.Equal(t, "ws1", p.WorkspaceID)
		assert.LessOrEqual(t, len([]rune(p.Context)), 500)
	}
}

func TestAnalyzeRequiresModel(t *testing.T) {
	f := newPainFixture()
	f.model.configured = false
	_, err := f.svc.Analyze(context.Background(), "ws1", []string{"p1"})
	var pe *painradar.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, painradar.CodeAIAnalysis, pe.Code)

	_, err = f.svc.Analyze(context.Background(), "ws1", nil)
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, painradar.CodeValidation, pe.Code)
}

func TestQuickSearchValidation(t *testing.T) {
	f := newPainFixture()
	var pe *painradar.Error

	_, err := f.svc.QuickSearch(context.Background(), painradar.QuickSearchRequest{Query: "a"})
	require.ErrorAs(t, err, &pe)

	_, err = f.svc.QuickSearch(context.Background(), painradar.QuickSearchRequest{Query: "invoices", Platforms: []dom.Platform{"MYSPACE"}})
	require.ErrorAs(t, err, &pe)

	res, err := f.svc.QuickSearch(context.Background(), painradar.QuickSearchRequest{
		Query: "invoices", Platforms: []dom.Platform{dom.PlatformReddit, dom.PlatformHackerNews}, Limit: 10, Dedupe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "invoices", res.Query)
	assert.Len(t, res.Stats.Errors, 1)
}

func TestPage(t *testing.T) {
	l, o := Page(0, -5)
	assert.Equal(t, defaultPainPage, l)
	assert.Equal(t, 0, o)
	l, _ = Page(1000, 0)
	assert.Equal(t, maxPainPage, l)
}

func TestGenerateMessage(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()

	variants, err := f.svc.GenerateMessage(ctx, llm.MessageBrief{Problem: " slow invoicing ", Niche: " accounting "})
	require.NoError(t, err)
	assert.Equal(t, "Hi from accounting", variants[0])
	require.Len(t, f.model.briefs, 1)
	assert.Equal(t, llm.ToneEmpathetic, f.model.briefs[0].Tone)
	assert.Equal(t, "slow invoicing", f.model.briefs[0].Problem)

	cases := []struct {
		name   string
		brief  llm.MessageBrief
		status int
	}{
		{"no problem", llm.MessageBrief{Niche: "accounting"}, http.StatusBadRequest},
		{"no niche", llm.MessageBrief{Problem: "p", Niche: "  "}, http.StatusBadRequest},
		{"unknown tone", llm.MessageBrief{Problem: "p", Niche: "n", Tone: "angry"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.GenerateMessage(ctx, tc.brief)
			var pe *painradar.Error
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tc.status, pe.Status)
		})
	}

	f.model.configured = false
	_, err = f.svc.GenerateMessage(ctx, llm.MessageBrief{Problem: "p", Niche: "n"})
	var pe *painradar.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestMatchProjects(t *testing.T) {
	f := newPainFixture()
	ctx := context.Background()
	f.repo.pains = []dom.ExtractedPain{{ID: "pain1", WorkspaceID: "ws1", PainText: "clients wait for answers"}}
	f.repo.projects = []dom.Project{
		{ID: "p1", WorkspaceID: "ws1", Name: "Support bot", PainDescription: "slow replies"},
		{ID: "p2", WorkspaceID: "ws1", Name: "CRM", PainDescription: "lost leads"},
		{ID: "p3", WorkspaceID: "ws1", Name: "Landing", PainDescription: " "},
		{ID: "p4", WorkspaceID: "ws2", Name: "Foreign", PainDescription: "slow replies"},
	}
	f.model.matches = []llm.ProjectMatch{
		{ProjectID: "p2", Similarity: 0.6},
		{ProjectID: "p1", Similarity: 0.92},
		{ProjectID: "p4", Similarity: 0.99},
		{ProjectID: "p2", Similarity: 0.2},
	}

	res, err := f.svc.MatchProjects(ctx, "ws1", "u1", "pain1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalProjects)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "p1", res.Matches[0].Project.ID)
	assert.Equal(t, "p2", res.Matches[1].Project.ID)
	assert.Len(t, f.model.matched, 2)

	require.Len(t, f.acts.list, 1)
	a := f.acts.list[0]
	assert.Equal(t, "pain_radar.match_projects", a.Action)
	assert.Equal(t, "pain1", a.EntityID)
	assert.JSONEq(t, `{"matchesFound":2,"totalProjects":2}`, string(a.NewValue))

	_, err = f.svc.MatchProjects(ctx, "ws2", "u1", "pain1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchProjectsWithoutPainDescriptions(t *testing.T) {
	f := newPainFixture()
	f.repo.pains = []dom.ExtractedPain{{ID: "pain1", WorkspaceID: "ws1", PainText: "x"}}
	f.model.configured = false

	res, err := f.svc.MatchProjects(context.Background(), "ws1", "u1", "pain1")
	require.NoError(t, err)
	assert.Zero(t, res.TotalProjects)
	assert.Empty(t, res.Matches)
	assert.Nil(t, f.model.matched)
	assert.Empty(t, f.acts.list)
}

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/cache"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

type countingSearch struct {
	calls     atomic.Int32
	query     string
	perEntity int
}

func (c *countingSearch) Search(_ context.Context, _, q string, perEntity int) (dom.SearchResults, error) {
	c.calls.Add(1)
	c.query, c.perEntity = q, perEntity
	res := emptySearch()
	res.Clients = append(res.Clients, dom.SearchHit{ID: "c1", Title: "Acme"})
	return res, nil
}

type countingDashboard struct {
	calls atomic.Int32
	open  int
}

func (c *countingDashboard) Metrics(_ context.Context, _ string, _ time.Time) (dom.DashboardMetrics, error) {
	c.calls.Add(1)
	return dom.DashboardMetrics{OpenTasks: c.open, ProjectsByStatus: map[string]int{}, TouchesByStatus: map[string]int{}}, nil
}

var (
	_ repo.SearchRepo    = (*countingSearch)(nil)
	_ repo.DashboardRepo = (*countingDashboard)(nil)
	_ ResultCache        = (*cache.WorkspaceCache)(nil)
)

func TestSearchShortQuery(t *testing.T) {
	r := &countingSearch{}
	svc := NewSearchService(r, newMemCache())

	for _, q := range []string{"", " ", "a", " я "} {
		res, err := svc.Search(context.Background(), "ws1", q)
		require.NoError(t, err)
		assert.Equal(t, emptySearch(), res, q)
	}
	assert.Zero(t, r.calls.Load())

	_, err := svc.Search(context.Background(), "ws1", "яб")
	require.NoError(t, err)
	assert.EqualValues(t, 1, r.calls.Load(), "two Cyrillic letters are a valid query")
}

func TestSearchCache(t *testing.T) {
	ctx := context.Background()
	r := &countingSearch{}
	c := newMemCache()
	svc := NewSearchService(r, c)

	first, err := svc.Search(ctx, "ws1", "  Acme ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", r.query)
	assert.Equal(t, 5, r.perEntity)
	require.Len(t, first.Clients, 1)

	second, err := svc.Search(ctx, "ws1", "acme")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, r.calls.Load(), "normalized query hits the cache")
	assert.Equal(t, 1, c.hits)

	_, err = svc.Search(ctx, "ws2", "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 2, r.calls.Load(), "cache is per workspace")

	// A write in ws1 drops its cached results.
	hooks := Hooks{Cache: c}
	hooks.invalidate(ctx, "ws1")
	_, err = svc.Search(ctx, "ws1", "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.calls.Load())
	_, err = svc.Search(ctx, "ws2", "acme")
	require.NoError(t, err)
	assert.EqualValues(t, 3, r.calls.Load())
}

func TestSearchWithoutCache(t *testing.T) {
	r := &countingSearch{}
	svc := NewSearchService(r, nil)
	for i := 0; i < 2; i++ {
		_, err := svc.Search(context.Background(), "ws1", "acme")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, r.calls.Load())
}

func TestDashboardCache(t *testing.T) {
	ctx := context.Background()
	r := &countingDashboard{open: 4}
	c := newMemCache()
	svc := NewDashboardService(r, c)

	m, err := svc.Metrics(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 4, m.OpenTasks)

	r.open = 5
	m, err = svc.Metrics(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 4, m.OpenTasks, "served from cache")
	assert.EqualValues(t, 1, r.calls.Load())

	// Creating a task invalidates the workspace dashboard.
	tasks := NewTaskService(newFakeTasks(), &fakeProjects{}, newFakeWorkspaces(), &fakeNotifications{}, Hooks{Cache: c})
	_, err = tasks.Create(ctx, "ws1", "alice", dom.Task{Title: "New"})
	require.NoError(t, err)

	m, err = svc.Metrics(ctx, "ws1")
	require.NoError(t, err)
	assert.Equal(t, 5, m.OpenTasks)
	assert.EqualValues(t, 2, r.calls.Load())
}

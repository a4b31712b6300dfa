package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/cache"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

// DashboardService serves the workspace overview, cached per workspace.
type DashboardService struct {
	repo  repo.DashboardRepo
	cache ResultCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewDashboardService creates a DashboardService. If c is nil, caching is disabled.
func NewDashboardService(r repo.DashboardRepo, c ResultCache) *DashboardService {
	return &DashboardService{repo: r, cache: c, now: time.Now}
}

func (s *DashboardService) Metrics(ctx context.Context, workspaceID string) (dom.DashboardMetrics, error) {
	if s.cache == nil {
		return s.repo.Metrics(ctx, workspaceID, s.now().UTC())
	}
	v, err, _ := s.sf.Do(cache.Key(workspaceID, cache.KindDashboard, ""), func() (interface{}, error) {
		var m dom.DashboardMetrics
		if ok, err := s.cache.Get(ctx, workspaceID, cache.KindDashboard, "", &m); err == nil && ok {
			return m, nil
		}
		m, err := s.repo.Metrics(ctx, workspaceID, s.now().UTC())
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, workspaceID, cache.KindDashboard, "", m)
		return m, nil
	})
	if err != nil {
		return dom.DashboardMetrics{}, err
	}
	return v.(dom.DashboardMetrics), nil
}

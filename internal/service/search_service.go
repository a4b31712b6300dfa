package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/cache"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
)

const (
	minSearchLen    = 2
	searchPerEntity = 5
)

// SearchService backs the command palette: quick search across entities.
type SearchService struct {
	repo  repo.SearchRepo
	cache ResultCache
	sf    singleflight.Group
}

// NewSearchService creates a SearchService. If c is nil, caching is disabled.
func NewSearchService(r repo.SearchRepo, c ResultCache) *SearchService {
	return &SearchService{repo: r, cache: c}
}

// Search returns up to five hits per entity. Queries shorter than two
// characters return empty groups.
func (s *SearchService) Search(ctx context.Context, workspaceID, q string) (dom.SearchResults, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLen {
		return emptySearch(), nil
	}
	if s.cache == nil {
		return s.repo.Search(ctx, workspaceID, q, searchPerEntity)
	}
	key := cache.Key(workspaceID, cache.KindSearch, q)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		var res dom.SearchResults
		if ok, err := s.cache.Get(ctx, workspaceID, cache.KindSearch, q, &res); err == nil && ok {
			return res, nil
		}
		res, err := s.repo.Search(ctx, workspaceID, q, searchPerEntity)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, workspaceID, cache.KindSearch, q, res)
		return res, nil
	})
	if err != nil {
		return dom.SearchResults{}, err
	}
	return v.(dom.SearchResults), nil
}

func emptySearch() dom.SearchResults {
	return dom.SearchResults{
		Clients:  []dom.SearchHit{},
		Projects: []dom.SearchHit{},
		Tasks:    []dom.SearchHit{},
		Touches:  []dom.SearchHit{},
	}
}

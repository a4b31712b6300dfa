package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/service"
)

func TestPeriodDays(t *testing.T) {
	for in, want := range map[string]int{"": 0, "7d": 7, "30D": 30, " 90d ": 90} {
		got, err := periodDays(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := periodDays("1y")
	var pe *painradar.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, painradar.CodeValidation, pe.Code)
}

func TestPlatformsOf(t *testing.T) {
	assert.Equal(t, []dom.Platform{dom.PlatformReddit, dom.PlatformHabr}, platformsOf([]string{"reddit", "HABR"}))
	assert.Empty(t, platformsOf(nil))
}

func TestPainToResponse(t *testing.T) {
	published := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	p := dom.ExtractedPain{
		ID:       "pain1",
		PostID:   "post1",
		PainText: "Invoices take hours",
		Category: dom.PainTimeManagement,
		Severity: dom.SeverityHigh,
		Post:     &dom.SocialPost{ID: "post1", Platform: dom.PlatformReddit, Title: "Help", PublishedAt: published},
	}
	resp := painToResponse(p)
	assert.Equal(t, "TIME_MANAGEMENT", resp.Category)
	assert.Equal(t, []string{}, resp.Keywords)
	require.NotNil(t, resp.Post)
	assert.Equal(t, "REDDIT", resp.Post.Platform)
	assert.Equal(t, published, resp.Post.PublishedAt)

	p.Post = nil
	assert.Nil(t, painToResponse(p).Post)
}

func TestMatchesToResponse(t *testing.T) {
	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	resp := matchesToResponse(service.MatchResult{
		TotalProjects: 3,
		Matches: []service.ProjectMatch{{
			Project:    dom.Project{ID: "p1", Name: "Bot", PainDescription: "slow replies", Status: dom.ProjectInProgress, CreatedAt: created},
			Similarity: 0.8,
		}},
	})
	assert.Equal(t, 3, resp.TotalProjects)
	assert.Equal(t, 1, resp.MatchesFound)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, "p1", resp.Projects[0].ProjectID)
	assert.Equal(t, "slow replies", resp.Projects[0].Project.Pain)
	assert.Equal(t, "IN_PROGRESS", resp.Projects[0].Project.Status)

	empty := matchesToResponse(service.MatchResult{Matches: []service.ProjectMatch{}})
	assert.NotNil(t, empty.Projects)
}

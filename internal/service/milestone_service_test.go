package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func newMilestoneFixture() (*MilestoneService, *fakeMilestones, *recordedActivities) {
	projects := &fakeProjects{projects: map[string]dom.Project{
		"p1": {ID: "p1", WorkspaceID: "ws1", Name: "Website"},
		"p2": {ID: "p2", WorkspaceID: "ws2", Name: "Foreign"},
	}}
	milestones := &fakeMilestones{}
	acts := &recordedActivities{}
	return NewMilestoneService(milestones, projects, Hooks{Activity: acts}), milestones, acts
}

func TestCreateMilestoneOrder(t *testing.T) {
	svc, _, acts := newMilestoneFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "ws1", "alice", dom.Milestone{ProjectID: "p1", Title: " Design "})
	require.NoError(t, err)
	assert.Equal(t, "Design", first.Title)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, dom.MilestonePending, first.Status)

	explicit, err := svc.Create(ctx, "ws1", "alice", dom.Milestone{ProjectID: "p1", Title: "Launch", Order: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, explicit.Order)

	next, err := svc.Create(ctx, "ws1", "alice", dom.Milestone{ProjectID: "p1", Title: "Support"})
	require.NoError(t, err)
	assert.Equal(t, 6, next.Order)

	list, err := svc.List(ctx, "ws1", "p1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Design", "Launch", "Support"}, []string{list[0].Title, list[1].Title, list[2].Title})

	require.Len(t, acts.list, 3)
	assert.Equal(t, "milestone", acts.list[0].EntityType)
	assert.Equal(t, "p1", *acts.list[0].ProjectID)
}

func TestCreateMilestoneValidation(t *testing.T) {
	svc, _, _ := newMilestoneFixture()
	ctx := context.Background()

	cases := []struct {
		name string
		m    dom.Milestone
	}{
		{"no title", dom.Milestone{ProjectID: "p1", Title: "  "}},
		{"no project", dom.Milestone{Title: "Design"}},
		{"negative order", dom.Milestone{ProjectID: "p1", Title: "Design", Order: -1}},
		{"foreign project", dom.Milestone{ProjectID: "p2", Title: "Design"}},
		{"malformed project", dom.Milestone{ProjectID: "not-a-uuid", Title: "Design"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "ws1", "alice", tc.m)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := svc.List(ctx, "ws1", "p2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMilestone(t *testing.T) {
	svc, _, acts := newMilestoneFixture()
	ctx := context.Background()
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	m, err := svc.Create(ctx, "ws1", "alice", dom.Milestone{ProjectID: "p1", Title: "Design", DueDate: &due})
	require.NoError(t, err)

	done := dom.MilestoneCompleted
	updated, err := svc.Update(ctx, "ws1", "bob", m.ID, MilestonePatch{Status: &done, ClearDueDate: true})
	require.NoError(t, err)
	assert.Equal(t, dom.MilestoneCompleted, updated.Status)
	assert.Nil(t, updated.DueDate)

	last := acts.list[len(acts.list)-1]
	assert.Equal(t, dom.ActivityStatusChange, last.Type)
	assert.JSONEq(t, `{"status":"PENDING"}`, string(last.OldValue))
	assert.JSONEq(t, `{"status":"COMPLETED"}`, string(last.NewValue))

	bogus := dom.MilestoneStatus("DONE")
	zero := 0
	cases := []struct {
		name  string
		patch MilestonePatch
	}{
		{"unknown status", MilestonePatch{Status: &bogus}},
		{"blank title", MilestonePatch{Title: ptr(" ")}},
		{"zero order", MilestonePatch{Order: &zero}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(ctx, "ws1", "bob", m.ID, tc.patch)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err = svc.Update(ctx, "ws2", "bob", m.ID, MilestonePatch{Status: &done})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteMilestone(t *testing.T) {
	svc, repo, acts := newMilestoneFixture()
	ctx := context.Background()
	m, err := svc.Create(ctx, "ws1", "alice", dom.Milestone{ProjectID: "p1", Title: "Design"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "ws2", "alice", m.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "ws1", "alice", "not-a-uuid"), ErrNotFound)
	assert.Contains(t, repo.items, m.ID)

	require.NoError(t, svc.Delete(ctx, "ws1", "alice", m.ID))
	assert.NotContains(t, repo.items, m.ID)
	assert.Equal(t, dom.ActivityDelete, acts.list[len(acts.list)-1].Type)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func newClientFixture() (*ClientService, *fakeClients, *recordedActivities, *fakeNotifier) {
	clients := &fakeClients{clients: map[string]dom.Client{
		"c1": {ID: "c1", WorkspaceID: "ws1", Name: "Acme", Company: "Acme LLC", Status: dom.ClientActive, Source: dom.ClientSourceOther},
		"c2": {ID: "c2", WorkspaceID: "ws1", Name: "Globex", Status: dom.ClientLead, Source: dom.ClientSourceOther},
		"c3": {ID: "c3", WorkspaceID: "ws2", Name: "Acme abroad", Status: dom.ClientActive, Source: dom.ClientSourceOther},
	}}
	acts := &recordedActivities{}
	notifier := &fakeNotifier{}
	svc := NewClientService(clients, Hooks{
		Activity:   acts,
		Notifier:   notifier,
		Workspaces: newFakeWorkspaces(telegramWorkspace("ws1", "Paseka")),
	})
	return svc, clients, acts, notifier
}

func TestListClientsFilters(t *testing.T) {
	svc, repo, _, _ := newClientFixture()
	ctx := context.Background()

	cases := []struct {
		name   string
		filter dom.ClientFilter
		want   []string
	}{
		{"all", dom.ClientFilter{}, []string{"c1", "c2"}},
		{"query is trimmed", dom.ClientFilter{Query: "  acme "}, []string{"c1"}},
		{"status", dom.ClientFilter{Status: dom.ClientLead}, []string{"c2"}},
		{"query and status", dom.ClientFilter{Query: "acme", Status: dom.ClientLead}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.List(ctx, "ws1", tc.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}

	_, err := svc.List(ctx, "ws1", dom.ClientFilter{Query: "\tGlobex  "})
	require.NoError(t, err)
	assert.Equal(t, "Globex", repo.filter.Query)

	_, err = svc.List(ctx, "ws1", dom.ClientFilter{Status: "VIP"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClientAnalytics(t *testing.T) {
	svc, repo, _, _ := newClientFixture()
	ctx := context.Background()
	repo.analytics = dom.ClientAnalytics{
		ProjectsByStatus: map[dom.ProjectStatus]int{dom.ProjectInProgress: 2, dom.ProjectCompleted: 1},
		TotalBudget:      150000,
		TasksTotal:       8,
		TasksCompleted:   6,
	}

	a, err := svc.Analytics(ctx, "ws1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", a.ClientID)
	assert.Equal(t, 2, a.ProjectsByStatus[dom.ProjectInProgress])
	assert.InDelta(t, 0.75, a.CompletionRate(), 1e-9)
	assert.Zero(t, dom.ClientAnalytics{}.CompletionRate())

	_, err = svc.Analytics(ctx, "ws1", "c3")
	assert.ErrorIs(t, err, ErrNotFound, "clients of other workspaces are invisible")
	_, err = svc.Analytics(ctx, "ws1", "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateClientStatusChange(t *testing.T) {
	svc, _, acts, notifier := newClientFixture()
	ctx := context.Background()
	inactive := dom.ClientInactive
	notes := "moved to another vendor"

	updated, err := svc.Update(ctx, "ws1", "alice", "c1", ClientPatch{Status: &inactive, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, dom.ClientInactive, updated.Status)

	require.Len(t, acts.list, 1)
	assert.Equal(t, dom.ActivityStatusChange, acts.list[0].Type)
	assert.JSONEq(t, `{"status":"ACTIVE"}`, string(acts.list[0].OldValue))
	assert.JSONEq(t, `{"status":"INACTIVE"}`, string(acts.list[0].NewValue))

	require.Len(t, notifier.groups, 1)
	assert.Equal(t, dom.EventClientUpdated, notifier.groups[0].ev)
	assert.Equal(t, "статус, заметки", notifier.groups[0].data.Changes)
}

func TestCreateClientDefaults(t *testing.T) {
	svc, _, _, _ := newClientFixture()

	c, err := svc.Create(context.Background(), "ws1", "alice", dom.Client{Name: " Initech "})
	require.NoError(t, err)
	assert.Equal(t, "Initech", c.Name)
	assert.Equal(t, dom.ClientActive, c.Status)
	assert.Equal(t, dom.ClientSourceOther, c.Source)
	assert.NotNil(t, c.SocialLinks)
	assert.NotNil(t, c.CustomFields)

	_, err = svc.Create(context.Background(), "ws1", "alice", dom.Client{Name: "x", Source: "BILLBOARD"})
	assert.ErrorIs(t, err, ErrValidation)
}

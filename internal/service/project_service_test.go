package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

type projectFixture struct {
	svc      *ProjectService
	projects *fakeProjects
	files    *fakeFiles
	store    *fakeStore
	notifier *fakeNotifier
	acts     *recordedActivities
	cache    *memCache
}

func newProjectFixture(withStore bool) projectFixture {
	chat := "100"
	workspaces := newFakeWorkspaces(telegramWorkspace("ws1", "Paseka"))
	users := newFakeUsers(
		dom.User{ID: "alice", Name: "Alice", TelegramChatID: &chat},
		dom.User{ID: "bob", Name: "Bob"},
	)
	f := projectFixture{
		projects: &fakeProjects{projects: map[string]dom.Project{
			"p1": {ID: "p1", WorkspaceID: "ws1", Name: "Website", Type: dom.ProjectOther, Status: dom.ProjectLead,
				Priority: dom.PriorityMedium, CreatedByID: "alice"},
		}},
		files:    &fakeFiles{},
		notifier: &fakeNotifier{},
		acts:     &recordedActivities{},
		cache:    newMemCache(),
	}
	var store ObjectStore
	if withStore {
		f.store = &fakeStore{}
		store = f.store
	}
	f.svc = NewProjectService(f.projects, &fakeClients{}, f.files, store, Hooks{
		Activity:   f.acts,
		Notifier:   f.notifier,
		Workspaces: workspaces,
		Users:      users,
		Cache:      f.cache,
	})
	return f
}

func TestProjectStatusChange(t *testing.T) {
	f := newProjectFixture(false)
	ctx := context.Background()
	inProgress := dom.ProjectInProgress

	updated, err := f.svc.Update(ctx, "ws1", "bob", "p1", ProjectPatch{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, dom.ProjectInProgress, updated.Status)

	require.Len(t, f.acts.list, 1)
	a := f.acts.list[0]
	assert.Equal(t, dom.ActivityStatusChange, a.Type)
	assert.Equal(t, "p1", *a.ProjectID)
	assert.JSONEq(t, `{"status":"LEAD"}`, string(a.OldValue))
	assert.JSONEq(t, `{"status":"IN_PROGRESS"}`, string(a.NewValue))

	require.Len(t, f.notifier.groups, 1)
	g := f.notifier.groups[0]
	assert.Equal(t, dom.EventProjectStatusChanged, g.ev)
	assert.Equal(t, "LEAD", g.data.OldStatus)
	assert.Equal(t, "IN_PROGRESS", g.data.NewStatus)
	assert.Equal(t, "Bob", g.data.UserName)

	// The creator hears about it in their personal chat.
	require.Len(t, f.notifier.personal, 1)
	assert.Equal(t, "100", f.notifier.personal[0].chat)
	assert.Contains(t, f.notifier.personal[0].text, "Website")
}

func TestProjectUpdateWithoutStatusChange(t *testing.T) {
	f := newProjectFixture(false)
	ctx := context.Background()
	name := "Website v2"
	same := dom.ProjectLead

	_, err := f.svc.Update(ctx, "ws1", "alice", "p1", ProjectPatch{Name: &name, Status: &same})
	require.NoError(t, err)
	assert.Equal(t, []dom.ActivityType{dom.ActivityUpdate}, f.acts.types())
	assert.Empty(t, f.notifier.groups)
	assert.Empty(t, f.notifier.personal)

	// Own status changes are not sent back to the creator.
	done := dom.ProjectCompleted
	_, err = f.svc.Update(ctx, "ws1", "alice", "p1", ProjectPatch{Status: &done})
	require.NoError(t, err)
	assert.Len(t, f.notifier.groups, 1)
	assert.Empty(t, f.notifier.personal)
}

func TestProjectValidation(t *testing.T) {
	f := newProjectFixture(false)
	ctx := context.Background()
	negative := -1.0
	unknown := "c404"
	bogus := dom.ProjectStatus("DONE")

	cases := []struct {
		name  string
		patch ProjectPatch
	}{
		{"blank name", ProjectPatch{Name: ptr("  ")}},
		{"unknown status", ProjectPatch{Status: &bogus}},
		{"negative budget", ProjectPatch{Budget: &negative}},
		{"foreign client", ProjectPatch{ClientID: &unknown}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Update(ctx, "ws1", "alice", "p1", tc.patch)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := f.svc.Update(ctx, "ws2", "alice", "p1", ProjectPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.acts.list)
}

func TestProjectWritesInvalidateCache(t *testing.T) {
	f := newProjectFixture(false)
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, "ws1", "dashboard", "", dom.DashboardMetrics{OpenTasks: 3}))
	require.NoError(t, f.cache.Set(ctx, "ws2", "dashboard", "", dom.DashboardMetrics{OpenTasks: 1}))

	_, err := f.svc.Create(ctx, "ws1", "alice", dom.Project{Name: "Mobile app"})
	require.NoError(t, err)

	var m dom.DashboardMetrics
	ok, err := f.cache.Get(ctx, "ws1", "dashboard", "", &m)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.cache.Get(ctx, "ws2", "dashboard", "", &m)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("storage disabled", func(t *testing.T) {
		f := newProjectFixture(false)
		_, err := f.svc.UploadFile(ctx, "ws1", "alice", "p1", Upload{Name: "a.txt", Size: 1, Body: bytes.NewReader([]byte("a"))})
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})

	f := newProjectFixture(true)
	cases := []struct {
		name    string
		up      Upload
		project string
		wantErr error
	}{
		{"too large", Upload{Name: "big.zip", Size: MaxFileSize + 1}, "p1", ErrValidation},
		{"empty", Upload{Name: "empty.txt", Size: 0}, "p1", ErrValidation},
		{"no name", Upload{Name: "  ", Size: 10}, "p1", ErrValidation},
		{"unknown project", Upload{Name: "a.txt", Size: 10}, "p404", ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.up.Body = bytes.NewReader(nil)
			_, err := f.svc.UploadFile(ctx, "ws1", "alice", tc.project, tc.up)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Empty(t, f.store.puts)

	file, err := f.svc.UploadFile(ctx, "ws1", "alice", "p1", Upload{
		Name: `C:\Users\alice\brief.pdf`,
		Size: MaxFileSize,
		Body: bytes.NewReader(nil),
	})
	require.NoError(t, err)
	assert.Equal(t, "brief.pdf", file.Name)
	assert.Equal(t, "application/octet-stream", file.ContentType)
	assert.Equal(t, []string{file.ObjectKey}, f.store.puts)
	assert.Equal(t, []dom.ActivityType{dom.ActivityCreate}, f.acts.types())

	url, err := f.svc.DownloadURL(ctx, "ws1", file.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, file.ObjectKey))
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("ws1", "p1", "brief.pdf")
	rest, ok := strings.CutPrefix(key, "workspaces/ws1/projects/p1/")
	require.True(t, ok, key)
	id, name, ok := strings.Cut(rest, "-brief")
	require.True(t, ok, key)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, ".pdf", name)
	assert.NotEqual(t, key, ObjectKey("ws1", "p1", "brief.pdf"))
}

func TestDeleteProjectRemovesStoredFiles(t *testing.T) {
	f := newProjectFixture(true)
	ctx := context.Background()
	file, err := f.svc.UploadFile(ctx, "ws1", "alice", "p1", Upload{Name: "a.txt", Size: 1, Body: bytes.NewReader([]byte("a"))})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "ws1", "alice", "p1"))
	assert.Equal(t, []string{file.ObjectKey}, f.store.deleted)
	require.Len(t, f.notifier.groups, 1)
	assert.Equal(t, dom.EventProjectDeleted, f.notifier.groups[0].ev)

	last := f.acts.list[len(f.acts.list)-1]
	assert.Equal(t, dom.ActivityDelete, last.Type)
	assert.Nil(t, last.ProjectID)
}

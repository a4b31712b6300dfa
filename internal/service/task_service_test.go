package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

type taskFixture struct {
	svc      *TaskService
	tasks    *fakeTasks
	notes    *fakeNotifications
	notifier *fakeNotifier
	acts     *recordedActivities
}

func newTaskFixture(tasks ...dom.Task) taskFixture {
	chat := "100"
	workspaces := newFakeWorkspaces(dom.Workspace{ID: "ws1", Name: "Paseka"})
	workspaces.addMember("ws1", "alice", dom.RoleMember)
	workspaces.addMember("ws1", "bob", dom.RoleMember)
	users := newFakeUsers(dom.User{ID: "bob", Name: "Bob", TelegramChatID: &chat}, dom.User{ID: "alice", Name: "Alice"})
	f := taskFixture{
		tasks:    newFakeTasks(tasks...),
		notes:    &fakeNotifications{},
		notifier: &fakeNotifier{},
		acts:     &recordedActivities{},
	}
	projects := &fakeProjects{projects: map[string]dom.Project{
		"p1": {ID: "p1", WorkspaceID: "ws1", Name: "Website"},
		"p2": {ID: "p2", WorkspaceID: "ws2", Name: "Foreign"},
	}}
	f.svc = NewTaskService(f.tasks, projects, workspaces, f.notes, Hooks{
		Activity:   f.acts,
		Notifier:   f.notifier,
		Workspaces: workspaces,
		Users:      users,
	})
	return f
}

func TestCreateTaskDefaultsAndAssignment(t *testing.T) {
	f := newTaskFixture()
	bob := "bob"
	project := "p1"

	created, err := f.svc.Create(context.Background(), "ws1", "alice", dom.Task{Title: " Fix login ", ProjectID: &project, AssigneeID: &bob})
	require.NoError(t, err)
	assert.Equal(t, "Fix login", created.Title)
	assert.Equal(t, dom.TaskTodo, created.Status)
	assert.Equal(t, dom.PriorityMedium, created.Priority)
	assert.Equal(t, "Website", created.ProjectName)
	assert.Nil(t, created.CompletedAt)

	assert.Equal(t, []dom.ActivityType{dom.ActivityCreate, dom.ActivityAssign}, f.acts.types())
	require.Len(t, f.notes.created, 1)
	assert.Equal(t, "bob", f.notes.created[0].UserID)
	assert.Equal(t, "/tasks/"+created.ID, f.notes.created[0].Link)
	require.Len(t, f.notifier.personal, 1)
	assert.Equal(t, "100", f.notifier.personal[0].chat)
	assert.Contains(t, f.notifier.personal[0].text, "Новая задача назначена")
}

func TestCreateTaskValidation(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	foreign := "p2"
	stranger := "mallory"

	_, err := f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "x", ProjectID: &foreign})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "x", AssigneeID: &stranger})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "x", Priority: "SOMEDAY"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMalformedIDs(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	bad := "not-a-uuid"

	_, err := f.svc.Get(ctx, "ws1", bad)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "ws1", "alice", bad), ErrNotFound)

	_, err = f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "x", ProjectID: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Create(ctx, "ws1", "alice", dom.Task{Title: "x", ParentID: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTaskCompletion(t *testing.T) {
	f := newTaskFixture(dom.Task{ID: "t1", WorkspaceID: "ws1", Title: "Deploy", Status: dom.TaskInProgress, Priority: dom.PriorityHigh})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	ctx := context.Background()

	done := dom.TaskCompleted
	updated, err := f.svc.Update(ctx, "ws1", "alice", "t1", TaskPatch{Status: &done})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(now))
	assert.Equal(t, []dom.ActivityType{dom.ActivityStatusChange}, f.acts.types())

	reopened := dom.TaskTodo
	updated, err = f.svc.Update(ctx, "ws1", "alice", "t1", TaskPatch{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateTaskSelfParent(t *testing.T) {
	f := newTaskFixture(dom.Task{ID: "t1", WorkspaceID: "ws1", Title: "Deploy", Status: dom.TaskTodo, Priority: dom.PriorityLow})
	self := "t1"
	_, err := f.svc.Update(context.Background(), "ws1", "alice", "t1", TaskPatch{ParentID: &self})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateTaskNotFoundInOtherWorkspace(t *testing.T) {
	f := newTaskFixture(dom.Task{ID: "t1", WorkspaceID: "ws2", Title: "Deploy", Status: dom.TaskTodo, Priority: dom.PriorityLow})
	title := "x"
	_, err := f.svc.Update(context.Background(), "ws1", "alice", "t1", TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkUpdate(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	status := dom.TaskCompleted

	n, err := f.svc.BulkUpdate(ctx, "ws1", "alice", []string{"a", " b ", "a", ""}, dom.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, f.tasks.bulk)

	_, err = f.svc.BulkUpdate(ctx, "ws1", "alice", nil, dom.TaskPatch{Status: &status})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.BulkUpdate(ctx, "ws1", "alice", []string{"a"}, dom.TaskPatch{})
	assert.ErrorIs(t, err, ErrValidation)

	many := make([]string, maxBulkTasks+1)
	for i := range many {
		many[i] = fmt.Sprintf("t%d", i)
	}
	_, err = f.svc.BulkUpdate(ctx, "ws1", "alice", many, dom.TaskPatch{Status: &status})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBulkDelete(t *testing.T) {
	f := newTaskFixture(
		dom.Task{ID: "a", WorkspaceID: "ws1", Title: "Alpha"},
		dom.Task{ID: "b", WorkspaceID: "ws1", Title: "Beta"},
		dom.Task{ID: "c", WorkspaceID: "ws2", Title: "Foreign"},
	)
	ctx := context.Background()

	n, err := f.svc.BulkDelete(ctx, "ws1", "alice", []string{"a", " b ", "a", "c", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, f.tasks.tasks, "a")
	assert.NotContains(t, f.tasks.tasks, "b")
	assert.Contains(t, f.tasks.tasks, "c", "tasks of other workspaces stay")
	assert.Equal(t, []dom.ActivityType{dom.ActivityDelete, dom.ActivityDelete}, f.acts.types())

	_, err = f.svc.BulkDelete(ctx, "ws1", "alice", []string{"c"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.BulkDelete(ctx, "ws1", "alice", []string{" "})
	assert.ErrorIs(t, err, ErrValidation)

	many := make([]string, maxBulkTasks+1)
	for i := range many {
		many[i] = fmt.Sprintf("t%d", i)
	}
	_, err = f.svc.BulkDelete(ctx, "ws1", "alice", many)
	assert.ErrorIs(t, err, ErrValidation)
}

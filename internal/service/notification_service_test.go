package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	repo := &fakeNotifications{}
	for _, n := range []dom.Notification{
		{WorkspaceID: "ws1", UserID: "alice", Title: "Task assigned"},
		{WorkspaceID: "ws1", UserID: "alice", Title: "Deadline tomorrow"},
		{WorkspaceID: "ws1", UserID: "bob", Title: "Task assigned"},
		{WorkspaceID: "ws2", UserID: "alice", Title: "Other workspace"},
	} {
		_, err := repo.Create(ctx, n)
		require.NoError(t, err)
	}
	svc := NewNotificationService(repo)

	count, err := svc.CountUnread(ctx, "ws1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, "ws1", "alice", "n1"))
	count, err = svc.CountUnread(ctx, "ws1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Someone else's notification is not found.
	assert.ErrorIs(t, svc.MarkRead(ctx, "ws1", "alice", "n3"), ErrNotFound)

	unread, err := svc.List(ctx, "ws1", "alice", true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Deadline tomorrow", unread[0].Title)

	marked, err := svc.MarkAllRead(ctx, "ws1", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	count, err = svc.CountUnread(ctx, "ws1", "alice")
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := svc.List(ctx, "ws1", "alice", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Other inboxes are untouched.
	count, err = svc.CountUnread(ctx, "ws1", "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = svc.CountUnread(ctx, "ws2", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

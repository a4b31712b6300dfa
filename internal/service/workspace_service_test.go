package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/auth"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

const testWS = "7f1c7a52-4a4e-4d35-9b7e-6f3c1d2b8a90"

func newWorkspaceFixture() (*WorkspaceService, *fakeWorkspaces, *fakeUsers, *recordedActivities) {
	workspaces := newFakeWorkspaces(dom.Workspace{ID: testWS, Name: "Paseka", OwnerID: "owner"})
	workspaces.addMember(testWS, "owner", dom.RoleOwner)
	workspaces.addMember(testWS, "admin", dom.RoleAdmin)
	workspaces.addMember(testWS, "member", dom.RoleMember)
	users := newFakeUsers(
		dom.User{ID: "owner", Email: "owner@paseka.dev", Name: "Owner"},
		dom.User{ID: "guest", Email: "guest@paseka.dev", Name: "Guest"},
		dom.User{ID: "other", Email: "other@paseka.dev", Name: "Other"},
	)
	invites := &fakeInvites{invites: map[string]dom.Invite{}, members: workspaces}
	acts := &recordedActivities{}
	svc := NewWorkspaceService(workspaces, users, invites, auth.NewInviteSigner("test-key"), 0,
		Hooks{Activity: acts})
	return svc, workspaces, users, acts
}

func TestResolveMember(t *testing.T) {
	svc, _, _, _ := newWorkspaceFixture()
	ctx := context.Background()

	m, ok, err := svc.ResolveMember(ctx, "admin", testWS)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dom.RoleAdmin, m.Role)

	_, ok, err = svc.ResolveMember(ctx, "guest", testWS)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = svc.ResolveMember(ctx, "admin", "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangeRole(t *testing.T) {
	svc, workspaces, _, acts := newWorkspaceFixture()
	ctx := context.Background()

	_, err := svc.ChangeRole(ctx, testWS, "admin", dom.RoleAdmin, "member", dom.RoleViewer)
	require.NoError(t, err)
	m, _ := workspaces.GetMember(ctx, testWS, "member")
	assert.Equal(t, dom.RoleViewer, m.Role)
	assert.Equal(t, []dom.ActivityType{dom.ActivityUpdate}, acts.types())

	_, err = svc.ChangeRole(ctx, testWS, "admin", dom.RoleAdmin, "member", dom.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ChangeRole(ctx, testWS, "admin", dom.RoleAdmin, "owner", dom.RoleMember)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ChangeRole(ctx, testWS, "owner", dom.RoleOwner, "member", dom.RoleOwner)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ChangeRole(ctx, testWS, "owner", dom.RoleOwner, "admin", dom.RoleMember)
	assert.NoError(t, err)

	_, err = svc.ChangeRole(ctx, testWS, "owner", dom.RoleOwner, "ghost", dom.RoleMember)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	svc, workspaces, _, _ := newWorkspaceFixture()
	ctx := context.Background()

	assert.ErrorIs(t, svc.RemoveMember(ctx, testWS, "admin", dom.RoleAdmin, "admin"), ErrValidation)
	assert.ErrorIs(t, svc.RemoveMember(ctx, testWS, "admin", dom.RoleAdmin, "owner"), ErrForbidden)
	require.NoError(t, svc.RemoveMember(ctx, testWS, "admin", dom.RoleAdmin, "member"))

	_, err := workspaces.GetMember(ctx, testWS, "member")
	assert.Error(t, err)
}

func TestInviteFlow(t *testing.T) {
	svc, workspaces, _, _ := newWorkspaceFixture()
	ctx := context.Background()

	_, _, err := svc.CreateInvite(ctx, testWS, "admin", dom.RoleAdmin, "", dom.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = svc.CreateInvite(ctx, testWS, "owner", dom.RoleOwner, "", dom.RoleOwner)
	assert.ErrorIs(t, err, ErrValidation)

	inv, token, err := svc.CreateInvite(ctx, testWS, "admin", dom.RoleAdmin, "Guest@Paseka.dev", "")
	require.NoError(t, err)
	assert.Equal(t, dom.RoleMember, inv.Role)
	assert.Equal(t, "guest@paseka.dev", inv.Email)

	preview, err := svc.PreviewInvite(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Paseka", preview.WorkspaceName)

	_, err = svc.AcceptInvite(ctx, token, "other")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.AcceptInvite(ctx, token, "guest")
	require.NoError(t, err)
	m, err := workspaces.GetMember(ctx, testWS, "guest")
	require.NoError(t, err)
	assert.Equal(t, dom.RoleMember, m.Role)

	_, err = svc.AcceptInvite(ctx, token, "guest")
	assert.ErrorIs(t, err, ErrInviteUsed)

	_, err = svc.PreviewInvite(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidInvite)
}

func TestAcceptInviteAlreadyMember(t *testing.T) {
	svc, _, users, _ := newWorkspaceFixture()
	ctx := context.Background()
	users.byID["member"] = users.byID["other"]

	_, token, err := svc.CreateInvite(ctx, testWS, "owner", dom.RoleOwner, "", dom.RoleViewer)
	require.NoError(t, err)
	_, err = svc.AcceptInvite(ctx, token, "member")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExpiredInvite(t *testing.T) {
	svc, _, _, _ := newWorkspaceFixture()
	ctx := context.Background()
	svc.now = func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }

	_, token, err := svc.CreateInvite(ctx, testWS, "owner", dom.RoleOwner, "", dom.RoleMember)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.PreviewInvite(ctx, token)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestSendTestMessageRequiresLinkedChat(t *testing.T) {
	svc, _, users, _ := newWorkspaceFixture()
	ctx := context.Background()
	n := &fakeNotifier{}
	svc.hooks.Notifier = n

	assert.ErrorIs(t, svc.SendTestMessage(ctx, "guest"), ErrValidation)

	require.NoError(t, svc.LinkTelegram(ctx, "guest", " 4242 "))
	assert.Equal(t, "4242", *users.byID["guest"].TelegramChatID)
	require.NoError(t, svc.SendTestMessage(ctx, "guest"))
	require.Len(t, n.personal, 1)
	assert.Equal(t, "4242", n.personal[0].chat)
}

package auth

import (
	"testing"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteRoundTrip(t *testing.T) {
	signer := NewInviteSigner("test-key")
	now := time.Now()
	token, err := signer.Sign(dom.Invite{
		ID:          "inv-1",
		WorkspaceID: "ws-1",
		Email:       "new@paseka.dev",
		Role:        dom.RoleMember,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	})
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "inv-1", claims.InviteID)
	assert.Equal(t, "ws-1", claims.WorkspaceID)
	assert.Equal(t, "new@paseka.dev", claims.Email)
	assert.Equal(t, dom.RoleMember, claims.Role)
}

func TestInviteRejectsForeignKeyAndExpiry(t *testing.T) {
	now := time.Now()
	inv := dom.Invite{ID: "inv-1", WorkspaceID: "ws-1", Role: dom.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	token, err := NewInviteSigner("key-a").Sign(inv)
	require.NoError(t, err)
	_, err = NewInviteSigner("key-b").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidInvite)

	inv.CreatedAt = now.Add(-2 * time.Hour)
	inv.ExpiresAt = now.Add(-time.Hour)
	expired, err := NewInviteSigner("key-a").Sign(inv)
	require.NoError(t, err)
	_, err = NewInviteSigner("key-a").Parse(expired)
	assert.ErrorIs(t, err, ErrInviteExpired)

	_, err = NewInviteSigner("key-a").Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidInvite)
}

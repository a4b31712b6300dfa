package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesPersonalWorkspace(t *testing.T) {
	users, workspaces := newFakeUsers(), newFakeWorkspaces()
	svc := NewUserService(users, workspaces)

	u, ws, err := svc.Register(context.Background(), "  Anna@Example.com ", "Anna", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.Equal(t, "Anna", ws.Name)
	assert.Equal(t, u.ID, ws.OwnerID)

	m, err := workspaces.GetMember(context.Background(), ws.ID, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, "OWNER", m.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeUsers(), newFakeWorkspaces())
	cases := []struct {
		name, email, user, password, msg string
	}{
		{"missing fields", "", "Anna", "secret1", "All fields are required"},
		{"bad email", "not-an-email", "Anna", "secret1", "invalid email"},
		{"short password", "a@b.co", "Anna", "12345", "password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tc.email, tc.user, tc.password)
			require.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tc.msg, err.Error())
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUsers(), newFakeWorkspaces())
	_, _, err := svc.Register(context.Background(), "a@b.co", "A", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "A@B.co", "B", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestValidateCredentials(t *testing.T) {
	svc := NewUserService(newFakeUsers(), newFakeWorkspaces())
	ctx := context.Background()
	registered, _, err := svc.Register(ctx, "a@b.co", "A", "secret1")
	require.NoError(t, err)

	u, err := svc.ValidateCredentials(ctx, "A@b.co", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.ValidateCredentials(ctx, "a@b.co", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.ValidateCredentials(ctx, "nobody@b.co", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

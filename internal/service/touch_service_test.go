package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

func TestConvertTouch(t *testing.T) {
	touches := &fakeTouches{touches: map[string]dom.Touch{
		"t1": {ID: "t1", WorkspaceID: "ws1", ContactName: "Ivan", ContactCompany: "Acme",
			ContactEmail: "ivan@acme.io", Description: "met at conf", Status: dom.TouchResponded},
	}}
	acts := &recordedActivities{}
	svc := NewTouchService(touches, nil, Hooks{Activity: acts})
	ctx := context.Background()

	touch, client, err := svc.Convert(ctx, "ws1", "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, dom.TouchConverted, touch.Status)
	require.NotNil(t, touch.ConvertedToClientID)
	assert.Equal(t, client.ID, *touch.ConvertedToClientID)
	assert.Equal(t, "Ivan", client.Name)
	assert.Equal(t, "Acme", client.Company)
	assert.Equal(t, dom.ClientSourceCold, client.Source)
	assert.Equal(t, dom.ClientActive, client.Status)
	assert.Equal(t, "From touch: met at conf", client.Notes)
	assert.Equal(t, []dom.ActivityType{dom.ActivityStatusChange}, acts.types())

	_, _, err = svc.Convert(ctx, "ws1", "u1", "t1")
	assert.ErrorIs(t, err, ErrAlreadyConverted)

	_, _, err = svc.Convert(ctx, "ws2", "u1", "t1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTouchCannotBeMarkedConvertedDirectly(t *testing.T) {
	svc := NewTouchService(&fakeTouches{touches: map[string]dom.Touch{}}, nil, Hooks{})
	_, err := svc.Create(context.Background(), "ws1", "u1", dom.Touch{ContactName: "Ivan", Status: dom.TouchConverted})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.List(context.Background(), "ws1", "maybe")
	assert.ErrorIs(t, err, ErrValidation)
}

package domain

import (
	"encoding/json"
	"time"
)

type ActivityType string

const (
	ActivityCreate       ActivityType = "CREATE"
	ActivityUpdate       ActivityType = "UPDATE"
	ActivityDelete       ActivityType = "DELETE"
	ActivityStatusChange ActivityType = "STATUS_CHANGE"
	ActivityComment      ActivityType = "COMMENT"
	ActivityAssign       ActivityType = "ASSIGN"
)

// Activity is an append-only audit record of a change inside a workspace.
type Activity struct {
	ID          string          `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	UserID      string          `json:"userId"`
	UserName    string          `json:"userName,omitempty"`
	ProjectID   *string         `json:"projectId,omitempty"`
	Type        ActivityType    `json:"type"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityId"`
	Action      string          `json:"action"`
	OldValue    json.RawMessage `json:"oldValue,omitempty"`
	NewValue    json.RawMessage `json:"newValue,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ActivityFilter struct {
	Type       ActivityType
	EntityType string
	UserID     string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

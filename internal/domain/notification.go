package domain

import "time"

// Notification is an in-app message for one user.
type Notification struct {
	ID          string
	WorkspaceID string
	UserID      string
	Title       string
	Body        string
	Link        string
	IsRead      bool
	CreatedAt   time.Time
}

package domain

import "time"

// Role is a member's permission level inside a workspace.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the permissions of min.
func (r Role) AtLeast(min Role) bool { return roleRank[r] >= roleRank[min] }

// Workspace is the tenant boundary: every other entity belongs to one.
type Workspace struct {
	ID                   string
	Name                 string
	OwnerID              string
	TelegramBotToken     *string
	TelegramChatID       *string
	NotificationSettings NotificationSettings
	CreatedAt            time.Time
}

// HasTelegram reports whether group notifications and digests can be delivered.
func (w Workspace) HasTelegram() bool {
	return w.TelegramBotToken != nil && *w.TelegramBotToken != "" &&
		w.TelegramChatID != nil && *w.TelegramChatID != ""
}

// Member links a user to a workspace with a role.
type Member struct {
	WorkspaceID string
	UserID      string
	Role        Role
	UserName    string
	UserEmail   string
	JoinedAt    time.Time
}

// Membership is a workspace as seen by one of its members.
type Membership struct {
	Workspace Workspace
	Role      Role
}

// Invite is a pending invitation into a workspace.
type Invite struct {
	ID          string
	WorkspaceID string
	Email       string
	Role        Role
	InvitedByID string
	ExpiresAt   time.Time
	AcceptedAt  *time.Time
	CreatedAt   time.Time
}

// GroupEvent names a workspace event that can be announced in the Telegram group.
type GroupEvent string

const (
	EventTaskCreated          GroupEvent = "taskCreated"
	EventTaskStatusChanged    GroupEvent = "taskStatusChanged"
	EventTaskAssigned         GroupEvent = "taskAssigned"
	EventTaskDeleted          GroupEvent = "taskDeleted"
	EventProjectCreated       GroupEvent = "projectCreated"
	EventProjectStatusChanged GroupEvent = "projectStatusChanged"
	EventProjectDeleted       GroupEvent = "projectDeleted"
	EventClientCreated        GroupEvent = "clientCreated"
	EventClientUpdated        GroupEvent = "clientUpdated"
	EventClientDeleted        GroupEvent = "clientDeleted"
	EventCommentAdded         GroupEvent = "commentAdded"
	EventFeedbackSubmitted    GroupEvent = "feedbackSubmitted"
	EventCalendarCreated      GroupEvent = "eventCreated"
)

// NotificationSettings toggles Telegram group notifications per event.
// A missing event key means enabled.
type NotificationSettings struct {
	Enabled bool                `json:"enabled"`
	Events  map[GroupEvent]bool `json:"events"`
}

// DefaultNotificationSettings has everything switched on.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Enabled: true, Events: map[GroupEvent]bool{}}
}

// Allows reports whether ev should be announced.
func (s NotificationSettings) Allows(ev GroupEvent) bool {
	if !s.Enabled {
		return false
	}
	on, ok := s.Events[ev]
	return !ok || on
}

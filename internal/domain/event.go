package domain

import "time"

type EventType string

const (
	EventMeeting   EventType = "MEETING"
	EventCall      EventType = "CALL"
	EventReminder  EventType = "REMINDER"
	EventDeadline  EventType = "DEADLINE"
	EventTaskDue   EventType = "TASK_DUE"
	EventMilestone EventType = "MILESTONE"
)

func (t EventType) Valid() bool {
	switch t {
	case EventMeeting, EventCall, EventReminder, EventDeadline, EventTaskDue, EventMilestone:
		return true
	}
	return false
}

// Event is a calendar entry.
type Event struct {
	ID          string
	WorkspaceID string
	Title       string
	Description string
	Type        EventType
	StartDate   time.Time
	EndDate     *time.Time
	AllDay      bool
	ProjectID   *string
	TaskID      *string
	ClientID    *string
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EventFilter struct {
	From *time.Time
	To   *time.Time
	Type EventType
}

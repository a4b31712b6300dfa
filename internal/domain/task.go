package domain

import "time"

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskInReview   TaskStatus = "IN_REVIEW"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskBlocked    TaskStatus = "BLOCKED"
	TaskCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskInReview, TaskCompleted, TaskBlocked, TaskCancelled:
		return true
	}
	return false
}

// Open reports whether the task still needs work.
func (s TaskStatus) Open() bool { return s != TaskCompleted && s != TaskCancelled }

// Task is a unit of work, optionally attached to a project.
type Task struct {
	ID           string
	WorkspaceID  string
	ProjectID    *string
	ProjectName  string
	ParentID     *string
	Title        string
	Description  string
	Status       TaskStatus
	Priority     Priority
	AssigneeID   *string
	AssigneeName string
	DueDate      *time.Time
	CompletedAt  *time.Time
	IsArchived   bool
	ArchivedAt   *time.Time
	CreatedByID  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOverdue reports whether an open task is past its due date at now.
func (t Task) IsOverdue(now time.Time) bool {
	return t.Status.Open() && !t.IsArchived && t.DueDate != nil && t.DueDate.Before(now)
}

type TaskFilter struct {
	ProjectID  string
	AssigneeID string
	Status     TaskStatus
	Archived   bool
}

// TaskPatch is a bulk update; nil fields stay unchanged.
type TaskPatch struct {
	Status     *TaskStatus
	Priority   *Priority
	AssigneeID *string
}

// TaskRef identifies a task in job reports.
type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

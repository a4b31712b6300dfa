package domain

import "time"

type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneCompleted  MilestoneStatus = "COMPLETED"
	MilestoneCancelled  MilestoneStatus = "CANCELLED"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneInProgress, MilestoneCompleted, MilestoneCancelled:
		return true
	}
	return false
}

// Milestone is a project stage. Order is 1-based within the project.
type Milestone struct {
	ID          string
	WorkspaceID string
	ProjectID   string
	Title       string
	Description string
	DueDate     *time.Time
	Order       int
	Status      MilestoneStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

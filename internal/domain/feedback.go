package domain

import "time"

type FeedbackType string

const (
	FeedbackBug         FeedbackType = "BUG"
	FeedbackFeature     FeedbackType = "FEATURE"
	FeedbackImprovement FeedbackType = "IMPROVEMENT"
)

func (t FeedbackType) Valid() bool {
	return t == FeedbackBug || t == FeedbackFeature || t == FeedbackImprovement
}

type FeedbackStatus string

const (
	FeedbackOpen       FeedbackStatus = "OPEN"
	FeedbackInProgress FeedbackStatus = "IN_PROGRESS"
	FeedbackResolved   FeedbackStatus = "RESOLVED"
	FeedbackClosed     FeedbackStatus = "CLOSED"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackOpen, FeedbackInProgress, FeedbackResolved, FeedbackClosed:
		return true
	}
	return false
}

type Feedback struct {
	ID            string
	WorkspaceID   string
	Type          FeedbackType
	Title         string
	Description   string
	Priority      *Priority
	Status        FeedbackStatus
	CreatedByID   string
	CreatedByName string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package domain

import "time"

type ProjectType string

const (
	ProjectWebsite       ProjectType = "WEBSITE"
	ProjectMobileApp     ProjectType = "MOBILE_APP"
	ProjectCRM           ProjectType = "CRM"
	ProjectAutomation    ProjectType = "AUTOMATION"
	ProjectAIIntegration ProjectType = "AI_INTEGRATION"
	ProjectOther         ProjectType = "OTHER"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectWebsite, ProjectMobileApp, ProjectCRM, ProjectAutomation, ProjectAIIntegration, ProjectOther:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectLead          ProjectStatus = "LEAD"
	ProjectQualification ProjectStatus = "QUALIFICATION"
	ProjectBriefing      ProjectStatus = "BRIEFING"
	ProjectInProgress    ProjectStatus = "IN_PROGRESS"
	ProjectOnHold        ProjectStatus = "ON_HOLD"
	ProjectCompleted     ProjectStatus = "COMPLETED"
	ProjectRejected      ProjectStatus = "REJECTED"
	ProjectArchived      ProjectStatus = "ARCHIVED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectLead, ProjectQualification, ProjectBriefing, ProjectInProgress,
		ProjectOnHold, ProjectCompleted, ProjectRejected, ProjectArchived:
		return true
	}
	return false
}

// Priority is shared by projects and tasks.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

type Project struct {
	ID              string
	WorkspaceID     string
	ClientID        *string
	ClientName      string
	Name            string
	Description     string
	Type            ProjectType
	Status          ProjectStatus
	Priority        Priority
	Budget          *float64
	StartDate       *time.Time
	EndDatePlan     *time.Time
	PainDescription string
	CreatedByID     string
	TaskCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ProjectFilter struct {
	Status   ProjectStatus
	Type     ProjectType
	ClientID string
}

// ProjectFile is an attachment stored in object storage.
type ProjectFile struct {
	ID           string
	WorkspaceID  string
	ProjectID    string
	Name         string
	ObjectKey    string
	ContentType  string
	Size         int64
	UploadedByID string
	CreatedAt    time.Time
}

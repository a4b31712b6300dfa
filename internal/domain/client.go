package domain

import "time"

type ClientSource string

const (
	ClientSourceReferral ClientSource = "REFERRAL"
	ClientSourceCold     ClientSource = "COLD"
	ClientSourceInbound  ClientSource = "INBOUND"
	ClientSourceSocial   ClientSource = "SOCIAL"
	ClientSourceOther    ClientSource = "OTHER"
)

func (s ClientSource) Valid() bool {
	switch s {
	case ClientSourceReferral, ClientSourceCold, ClientSourceInbound, ClientSourceSocial, ClientSourceOther:
		return true
	}
	return false
}

type ClientStatus string

const (
	ClientActive   ClientStatus = "ACTIVE"
	ClientInactive ClientStatus = "INACTIVE"
	ClientLead     ClientStatus = "LEAD"
)

func (s ClientStatus) Valid() bool {
	return s == ClientActive || s == ClientInactive || s == ClientLead
}

// SocialLink is a labelled profile URL of a client.
type SocialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type Client struct {
	ID           string
	WorkspaceID  string
	Name         string
	Company      string
	Email        string
	Phone        string
	Website      string
	Source       ClientSource
	Status       ClientStatus
	Notes        string
	SocialLinks  []SocialLink
	CustomFields map[string]any
	CreatedByID  string
	ProjectCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ClientFilter narrows client listings.
type ClientFilter struct {
	Query  string
	Status ClientStatus
}

// ClientAnalytics summarises a client's projects and delivery.
type ClientAnalytics struct {
	ClientID         string
	ProjectsByStatus map[ProjectStatus]int
	TotalBudget      float64
	TasksTotal       int
	TasksCompleted   int
}

// CompletionRate is completed/total tasks, 0 when there are no tasks.
func (a ClientAnalytics) CompletionRate() float64 {
	if a.TasksTotal == 0 {
		return 0
	}
	return float64(a.TasksCompleted) / float64(a.TasksTotal)
}

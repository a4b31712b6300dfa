package domain

import "time"

// TouchStatus tracks an outbound contact attempt towards conversion.
type TouchStatus string

const (
	TouchSent       TouchStatus = "SENT"
	TouchResponded  TouchStatus = "RESPONDED"
	TouchNoResponse TouchStatus = "NO_RESPONSE"
	TouchFollowUp   TouchStatus = "FOLLOW_UP"
	TouchConverted  TouchStatus = "CONVERTED"
)

func (s TouchStatus) Valid() bool {
	switch s {
	case TouchSent, TouchResponded, TouchNoResponse, TouchFollowUp, TouchConverted:
		return true
	}
	return false
}

// Touch is a logged outbound contact attempt with a prospective client.
type Touch struct {
	ID                  string
	WorkspaceID         string
	ContactName         string
	ContactEmail        string
	ContactPhone        string
	ContactCompany      string
	ContactPosition     string
	Industry            string
	SocialMedia         string
	Source              string
	Description         string
	SentMessage         string
	Status              TouchStatus
	FollowUpAt          *time.Time
	AssigneeID          *string
	AssigneeName        string
	ConvertedToClientID *string
	ConvertedAt         *time.Time
	CreatedByID         string
	CreatedByName       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

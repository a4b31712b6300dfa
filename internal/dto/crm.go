package dto

import (
	"encoding/json"
	"time"
)

// clients

type SocialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type CreateClientRequest struct {
	Name         string         `json:"name" binding:"required,max=200"`
	Company      string         `json:"company" binding:"max=200"`
	Email        string         `json:"email" binding:"max=254"`
	Phone        string         `json:"phone" binding:"max=50"`
	Website      string         `json:"website" binding:"max=500"`
	Source       string         `json:"source"`
	Status       string         `json:"status"`
	Notes        string         `json:"notes" binding:"max=10000"`
	SocialLinks  []SocialLink   `json:"socialLinks"`
	CustomFields map[string]any `json:"customFields"`
}

type UpdateClientRequest struct {
	Name         *string         `json:"name" binding:"omitempty,min=1,max=200"`
	Company      *string         `json:"company" binding:"omitempty,max=200"`
	Email        *string         `json:"email" binding:"omitempty,max=254"`
	Phone        *string         `json:"phone" binding:"omitempty,max=50"`
	Website      *string         `json:"website" binding:"omitempty,max=500"`
	Source       *string         `json:"source"`
	Status       *string         `json:"status"`
	Notes        *string         `json:"notes" binding:"omitempty,max=10000"`
	SocialLinks  *[]SocialLink   `json:"socialLinks"`
	CustomFields *map[string]any `json:"customFields"`
}

type ClientResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Company      string         `json:"company"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone"`
	Website      string         `json:"website"`
	Source       string         `json:"source"`
	Status       string         `json:"status"`
	Notes        string         `json:"notes"`
	SocialLinks  []SocialLink   `json:"socialLinks"`
	CustomFields map[string]any `json:"customFields"`
	ProjectCount int            `json:"projectCount"`
	CreatedByID  string         `json:"createdById"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type ListClientsResponse struct {
	Items []ClientResponse `json:"items"`
}

type ClientAnalyticsResponse struct {
	ClientID         string         `json:"clientId"`
	ProjectsByStatus map[string]int `json:"projectsByStatus"`
	TotalBudget      float64        `json:"totalBudget"`
	TasksTotal       int            `json:"tasksTotal"`
	TasksCompleted   int            `json:"tasksCompleted"`
	CompletionRate   float64        `json:"completionRate"`
}

// projects

type CreateProjectRequest struct {
	Name            string   `json:"name" binding:"required,max=200"`
	Description     string   `json:"description" binding:"max=10000"`
	ClientID        *string  `json:"clientId"`
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	Budget          *float64 `json:"budget" binding:"omitempty,gte=0"`
	StartDate       Time     `json:"startDate"`
	EndDatePlan     Time     `json:"endDatePlan"`
	PainDescription string   `json:"painDescription" binding:"max=10000"`
}

type UpdateProjectRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description     *string          `json:"description" binding:"omitempty,max=10000"`
	ClientID        Nullable[string] `json:"clientId"`
	Type            *string          `json:"type"`
	Status          *string          `json:"status"`
	Priority        *string          `json:"priority"`
	Budget          *float64         `json:"budget" binding:"omitempty,gte=0"`
	StartDate       *Time            `json:"startDate"`
	EndDatePlan     *Time            `json:"endDatePlan"`
	PainDescription *string          `json:"painDescription" binding:"omitempty,max=10000"`
}

type ProjectResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	ClientID        *string    `json:"clientId"`
	ClientName      string     `json:"clientName,omitempty"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	Budget          *float64   `json:"budget"`
	StartDate       *time.Time `json:"startDate"`
	EndDatePlan     *time.Time `json:"endDatePlan"`
	PainDescription string     `json:"painDescription"`
	TaskCount       int        `json:"taskCount"`
	CreatedByID     string     `json:"createdById"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type ListProjectsResponse struct {
	Items []ProjectResponse `json:"items"`
}

type ProjectFileResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	Name         string    `json:"name"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	UploadedByID string    `json:"uploadedById"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ListProjectFilesResponse struct {
	Items []ProjectFileResponse `json:"items"`
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

// tasks

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=300"`
	Description string  `json:"description" binding:"max=10000"`
	ProjectID   *string `json:"projectId"`
	ParentID    *string `json:"parentId"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
	DueDate     Time    `json:"dueDate"`
}

type UpdateTaskRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string          `json:"description" binding:"omitempty,max=10000"`
	ProjectID   Nullable[string] `json:"projectId"`
	ParentID    Nullable[string] `json:"parentId"`
	Status      *string          `json:"status"`
	Priority    *string          `json:"priority"`
	AssigneeID  Nullable[string] `json:"assigneeId"`
	DueDate     Nullable[Time]   `json:"dueDate"`
}

// BulkUpdateTasksRequest applies the same change to many tasks. An empty
// assigneeId unassigns.
type BulkUpdateTasksRequest struct {
	TaskIDs    []string `json:"taskIds" binding:"required,min=1,max=100"`
	Status     *string  `json:"status"`
	Priority   *string  `json:"priority"`
	AssigneeID *string  `json:"assigneeId"`
}

type BulkUpdateResponse struct {
	Updated int `json:"updated"`
}

type BulkDeleteTasksRequest struct {
	TaskIDs []string `json:"taskIds" binding:"required,min=1,max=100"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

type TaskResponse struct {
	ID           string     `json:"id"`
	ProjectID    *string    `json:"projectId"`
	ProjectName  string     `json:"projectName,omitempty"`
	ParentID     *string    `json:"parentId"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssigneeID   *string    `json:"assigneeId"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	DueDate      *time.Time `json:"dueDate"`
	CompletedAt  *time.Time `json:"completedAt"`
	IsArchived   bool       `json:"isArchived"`
	ArchivedAt   *time.Time `json:"archivedAt"`
	IsOverdue    bool       `json:"isOverdue"`
	CreatedByID  string     `json:"createdById"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

type TaskRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// events

type CreateEventRequest struct {
	Title       string  `json:"title" binding:"required,max=300"`
	Description string  `json:"description" binding:"max=10000"`
	Type        string  `json:"type"`
	StartDate   Time    `json:"startDate"`
	EndDate     Time    `json:"endDate"`
	AllDay      bool    `json:"allDay"`
	ProjectID   *string `json:"projectId"`
	TaskID      *string `json:"taskId"`
	ClientID    *string `json:"clientId"`
}

type UpdateEventRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string        `json:"description" binding:"omitempty,max=10000"`
	Type        *string        `json:"type"`
	StartDate   *Time          `json:"startDate"`
	EndDate     Nullable[Time] `json:"endDate"`
	AllDay      *bool          `json:"allDay"`
	ProjectID   *string        `json:"projectId"`
	TaskID      *string        `json:"taskId"`
	ClientID    *string        `json:"clientId"`
}

type EventResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	AllDay      bool       `json:"allDay"`
	ProjectID   *string    `json:"projectId"`
	TaskID      *string    `json:"taskId"`
	ClientID    *string    `json:"clientId"`
	CreatedByID string     `json:"createdById"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
}

// milestones

type CreateMilestoneRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	Title       string `json:"title" binding:"required,max=300"`
	Description string `json:"description" binding:"max=10000"`
	DueDate     Time   `json:"dueDate"`
	Order       int    `json:"order" binding:"min=0"`
}

type UpdateMilestoneRequest struct {
	Title       *string        `json:"title" binding:"omitempty,min=1,max=300"`
	Description *string        `json:"description" binding:"omitempty,max=10000"`
	DueDate     Nullable[Time] `json:"dueDate"`
	Order       *int           `json:"order" binding:"omitempty,min=1"`
	Status      *string        `json:"status" enums:"PENDING,IN_PROGRESS,COMPLETED,CANCELLED"`
}

type MilestoneResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type ListMilestonesResponse struct {
	Items []MilestoneResponse `json:"items"`
}

// touches

type CreateTouchRequest struct {
	ContactName     string  `json:"contactName" binding:"required,max=200"`
	ContactEmail    string  `json:"contactEmail" binding:"max=254"`
	ContactPhone    string  `json:"contactPhone" binding:"max=50"`
	ContactCompany  string  `json:"contactCompany" binding:"max=200"`
	ContactPosition string  `json:"contactPosition" binding:"max=200"`
	Industry        string  `json:"industry" binding:"max=200"`
	SocialMedia     string  `json:"socialMedia" binding:"max=500"`
	Source          string  `json:"source" binding:"max=200"`
	Description     string  `json:"description" binding:"max=10000"`
	SentMessage     string  `json:"sentMessage" binding:"max=10000"`
	Status          string  `json:"status"`
	FollowUpAt      Time    `json:"followUpAt"`
	AssigneeID      *string `json:"assigneeId"`
}

type UpdateTouchRequest struct {
	ContactName     *string        `json:"contactName" binding:"omitempty,min=1,max=200"`
	ContactEmail    *string        `json:"contactEmail" binding:"omitempty,max=254"`
	ContactPhone    *string        `json:"contactPhone" binding:"omitempty,max=50"`
	ContactCompany  *string        `json:"contactCompany" binding:"omitempty,max=200"`
	ContactPosition *string        `json:"contactPosition" binding:"omitempty,max=200"`
	Industry        *string        `json:"industry" binding:"omitempty,max=200"`
	SocialMedia     *string        `json:"socialMedia" binding:"omitempty,max=500"`
	Source          *string        `json:"source" binding:"omitempty,max=200"`
	Description     *string        `json:"description" binding:"omitempty,max=10000"`
	SentMessage     *string        `json:"sentMessage" binding:"omitempty,max=10000"`
	Status          *string        `json:"status"`
	FollowUpAt      Nullable[Time] `json:"followUpAt"`
	AssigneeID      *string        `json:"assigneeId"`
}

type TouchResponse struct {
	ID                  string     `json:"id"`
	ContactName         string     `json:"contactName"`
	ContactEmail        string     `json:"contactEmail"`
	ContactPhone        string     `json:"contactPhone"`
	ContactCompany      string     `json:"contactCompany"`
	ContactPosition     string     `json:"contactPosition"`
	Industry            string     `json:"industry"`
	SocialMedia         string     `json:"socialMedia"`
	Source              string     `json:"source"`
	Description         string     `json:"description"`
	SentMessage         string     `json:"sentMessage"`
	Status              string     `json:"status"`
	FollowUpAt          *time.Time `json:"followUpAt"`
	AssigneeID          *string    `json:"assigneeId"`
	AssigneeName        string     `json:"assigneeName,omitempty"`
	ConvertedToClientID *string    `json:"convertedToClientId"`
	ConvertedAt         *time.Time `json:"convertedAt"`
	CreatedByID         string     `json:"createdById"`
	CreatedByName       string     `json:"createdByName,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type ListTouchesResponse struct {
	Items []TouchResponse `json:"items"`
}

type ConvertTouchResponse struct {
	Touch  TouchResponse  `json:"touch"`
	Client ClientResponse `json:"client"`
}

// feedback

type CreateFeedbackRequest struct {
	Type        string  `json:"type" binding:"required"`
	Title       string  `json:"title" binding:"required,max=300"`
	Description string  `json:"description" binding:"required,max=10000"`
	Priority    *string `json:"priority"`
}

type UpdateFeedbackStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type FeedbackResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Priority      *string   `json:"priority"`
	Status        string    `json:"status"`
	CreatedByID   string    `json:"createdById"`
	CreatedByName string    `json:"createdByName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ListFeedbackResponse struct {
	Items []FeedbackResponse `json:"items"`
}

// activity, comments and notifications

type ActivityResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName,omitempty"`
	ProjectID  *string         `json:"projectId"`
	Type       string          `json:"type"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	OldValue   json.RawMessage `json:"oldValue,omitempty"`
	NewValue   json.RawMessage `json:"newValue,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ListActivityResponse struct {
	Items  []ActivityResponse `json:"items"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

type CreateCommentRequest struct {
	EntityType string `json:"entityType" binding:"required,oneof=task project"`
	EntityID   string `json:"entityId" binding:"required"`
	Text       string `json:"text" binding:"required"`
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListNotificationsResponse struct {
	Items []NotificationResponse `json:"items"`
}

type CountResponse struct {
	Count int `json:"count"`
}

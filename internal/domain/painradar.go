package domain

import "time"

// Platform is an external source searched by Pain Radar.
type Platform string

const (
	PlatformReddit     Platform = "REDDIT"
	PlatformHackerNews Platform = "HACKERNEWS"
	PlatformHabr       Platform = "HABR"
	PlatformWeb        Platform = "WEB"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformReddit, PlatformHackerNews, PlatformHabr, PlatformWeb:
		return true
	}
	return false
}

type PainCategory string

const (
	PainTimeManagement PainCategory = "TIME_MANAGEMENT"
	PainCost           PainCategory = "COST"
	PainTechnical      PainCategory = "TECHNICAL"
	PainProcess        PainCategory = "PROCESS"
	PainCommunication  PainCategory = "COMMUNICATION"
	PainQuality        PainCategory = "QUALITY"
	PainScalability    PainCategory = "SCALABILITY"
	PainSecurity       PainCategory = "SECURITY"
	PainOther          PainCategory = "OTHER"
)

func (c PainCategory) Valid() bool {
	switch c {
	case PainTimeManagement, PainCost, PainTechnical, PainProcess, PainCommunication,
		PainQuality, PainScalability, PainSecurity, PainOther:
		return true
	}
	return false
}

type PainSeverity string

const (
	SeverityLow      PainSeverity = "LOW"
	SeverityMedium   PainSeverity = "MEDIUM"
	SeverityHigh     PainSeverity = "HIGH"
	SeverityCritical PainSeverity = "CRITICAL"
)

func (s PainSeverity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh || s == SeverityCritical
}

// PainKeyword is a tracked search phrase.
type PainKeyword struct {
	ID          string
	WorkspaceID string
	Keyword     string
	Category    string
	IsActive    bool
	PostCount   int
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ScanStatus string

const (
	ScanRunning   ScanStatus = "RUNNING"
	ScanCompleted ScanStatus = "COMPLETED"
	ScanFailed    ScanStatus = "FAILED"
)

// PainScan is one run of a keyword against a platform.
type PainScan struct {
	ID           string
	WorkspaceID  string
	KeywordID    string
	Platform     Platform
	Status       ScanStatus
	PostsFound   int
	PostsNew     int
	ErrorMessage string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// SocialPost is a stored post found by a scan; unique per (platform, platform id).
type SocialPost struct {
	ID          string
	KeywordID   string
	WorkspaceID string
	Keyword     string
	Category    string
	Platform    Platform
	PlatformID  string
	Author      string
	AuthorURL   string
	Title       string
	Content     string
	URL         string
	Likes       int
	Comments    int
	Shares      int
	Engagement  int
	PublishedAt time.Time
	IsAnalyzed  bool
	AnalyzedAt  *time.Time
	CreatedAt   time.Time
}

// ExtractedPain is a business pain the LLM found in a post.
type ExtractedPain struct {
	ID          string
	WorkspaceID string
	PostID      string
	PainText    string
	Category    PainCategory
	Severity    PainSeverity
	Sentiment   float64
	Confidence  float64
	Keywords    []string
	Context     string
	CreatedAt   time.Time
	Post        *SocialPost
}

type PainFilter struct {
	Category  PainCategory
	Severity  PainSeverity
	KeywordID string
	Limit     int
	Offset    int
}

type PostFilter struct {
	KeywordID  string
	IsAnalyzed *bool
	Search     string
	Limit      int
	Offset     int
}

// PostUpsert tells what an upsert did with a fetched post.
type PostUpsert int

const (
	PostUnchanged PostUpsert = iota
	PostInserted
	PostUpdated
)

// PainTrendPoint is the number of pains extracted on one day.
type PainTrendPoint struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Sentiment float64 `json:"sentiment"`
}

// SentimentDistribution buckets pains by sentiment: > 0.2 positive, < -0.2 negative.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// PainDashboard aggregates extracted pains of a workspace over a period.
type PainDashboard struct {
	PeriodDays   int                   `json:"periodDays"`
	TotalPains   int                   `json:"totalPains"`
	TotalPosts   int                   `json:"totalPosts"`
	TopCategory  *PainCategory         `json:"topCategory"`
	AvgSentiment float64               `json:"avgSentiment"`
	ByCategory   map[PainCategory]int  `json:"byCategory"`
	BySeverity   map[PainSeverity]int  `json:"bySeverity"`
	Sentiment    SentimentDistribution `json:"sentimentDistribution"`
	Trend        []PainTrendPoint      `json:"trend"`
	TopPains     []ExtractedPain       `json:"-"`
}

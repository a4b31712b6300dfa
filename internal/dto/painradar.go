package dto

import (
	"time"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

type CreateKeywordRequest struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category" binding:"max=100"`
	IsActive *bool  `json:"isActive"`
}

type UpdateKeywordRequest struct {
	Keyword  *string `json:"keyword"`
	Category *string `json:"category" binding:"omitempty,max=100"`
	IsActive *bool   `json:"isActive"`
}

type KeywordResponse struct {
	ID        string    `json:"id"`
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	IsActive  bool      `json:"isActive"`
	PostCount int       `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListKeywordsResponse struct {
	Items []KeywordResponse `json:"items"`
}

type StartScanRequest struct {
	KeywordID string `json:"keywordId" binding:"required"`
	Platform  string `json:"platform"`
	Limit     int    `json:"limit"`
}

type ScanResponse struct {
	ID           string     `json:"id"`
	KeywordID    string     `json:"keywordId"`
	Platform     string     `json:"platform"`
	Status       string     `json:"status"`
	PostsFound   int        `json:"postsFound"`
	PostsNew     int        `json:"postsNew"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

type PostResponse struct {
	ID          string     `json:"id"`
	KeywordID   string     `json:"keywordId"`
	Keyword     string     `json:"keyword,omitempty"`
	Platform    string     `json:"platform"`
	PlatformID  string     `json:"platformId"`
	Author      string     `json:"author"`
	AuthorURL   string     `json:"authorUrl,omitempty"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	Likes       int        `json:"likes"`
	Comments    int        `json:"comments"`
	Shares      int        `json:"shares"`
	Engagement  int        `json:"engagement"`
	PublishedAt time.Time  `json:"publishedAt"`
	IsAnalyzed  bool       `json:"isAnalyzed"`
	AnalyzedAt  *time.Time `json:"analyzedAt"`
}

type ListPostsResponse struct {
	Items  []PostResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type AnalyzeRequest struct {
	PostIDs []string `json:"postIds"`
}

type PainResponse struct {
	ID         string        `json:"id"`
	PostID     string        `json:"postId"`
	PainText   string        `json:"painText"`
	Category   string        `json:"category"`
	Severity   string        `json:"severity"`
	Sentiment  float64       `json:"sentiment"`
	Confidence float64       `json:"confidence"`
	Keywords   []string      `json:"keywords"`
	Context    string        `json:"context"`
	CreatedAt  time.Time     `json:"createdAt"`
	Post       *PostResponse `json:"post,omitempty"`
}

type ListPainsResponse struct {
	Items  []PainResponse `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type QuickSearchRequest struct {
	Query         string   `json:"query"`
	Platforms     []string `json:"platforms"`
	Limit         int      `json:"limit"`
	MinEngagement int      `json:"minEngagement"`
	Dedupe        *bool    `json:"dedupe"`
}

type NicheRequest struct {
	Niche     string   `json:"niche"`
	Platforms []string `json:"platforms"`
	Limit     int      `json:"limit"`
}

type GenerateMessageRequest struct {
	Problem  string `json:"problem"`
	Niche    string `json:"niche"`
	Solution string `json:"solution"`
	Tone     string `json:"tone" enums:"professional,casual,empathetic"`
}

type GenerateMessageResponse struct {
	Message  string   `json:"message"`
	Variants []string `json:"variants"`
}

type MatchedProject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pain      string    `json:"pain"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProjectMatchResponse struct {
	ProjectID  string         `json:"projectId"`
	Similarity float64        `json:"similarity"`
	Project    MatchedProject `json:"project"`
}

type MatchProjectsResponse struct {
	Projects      []ProjectMatchResponse `json:"projects"`
	TotalProjects int                    `json:"totalProjects"`
	MatchesFound  int                    `json:"matchesFound"`
}

// PainErrorResponse is the body of Pain Radar failures.
type PainErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable,omitempty"`
}

type AnalyzeResponse struct {
	Analyzed       int `json:"analyzed"`
	PainsExtracted int `json:"painsExtracted"`
	FailedBatches  int `json:"failedBatches"`
}

// PainDashboardResponse adds the top pains to the aggregated counters.
type PainDashboardResponse struct {
	domain.PainDashboard
	TopPains []PainResponse `json:"topPains"`
}

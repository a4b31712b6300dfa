package domain

// SearchResults groups quick-search hits by entity.
type SearchResults struct {
	Clients  []SearchHit `json:"clients"`
	Projects []SearchHit `json:"projects"`
	Tasks    []SearchHit `json:"tasks"`
	Touches  []SearchHit `json:"touches"`
}

// SearchHit is one matched entity.
type SearchHit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// DashboardMetrics is the workspace overview.
type DashboardMetrics struct {
	ActiveClients      int            `json:"activeClients"`
	ProjectsByStatus   map[string]int `json:"projectsByStatus"`
	OpenTasks          int            `json:"openTasks"`
	OverdueTasks       int            `json:"overdueTasks"`
	CompletedLast7Days int            `json:"completedLast7Days"`
	TouchesByStatus    map[string]int `json:"touchesByStatus"`
	ConversionRate     float64        `json:"conversionRate"`
}

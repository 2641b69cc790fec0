package api

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Members int    `json:"members"`
	Version string `json:"version,omitempty"`
}

// StatusResponse is the payload for GET /api/v1/status.
type StatusResponse struct {
	Missing []string `json:"missing"`
	Message string   `json:"message"`
}

// StatsResponse is the payload for GET /api/v1/stats.
type StatsResponse struct {
	Total      int     `json:"total"`
	Submitted  int     `json:"submitted"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
}

// MembersResponse is the payload for GET /api/v1/members.
type MembersResponse struct {
	Members []string `json:"members"`
	Message string   `json:"message"`
}

// MemberResponse is the payload for GET /api/v1/members/{name}.
type MemberResponse struct {
	Name        string   `json:"name"`
	Submitted   bool     `json:"submitted"`
	SubmittedAt string   `json:"submitted_at,omitempty"` // 2006-01-02 15:04:05, sheet zone
	DaysAgo     *float64 `json:"days_ago,omitempty"`
	Preview     string   `json:"preview,omitempty"`
	Message     string   `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

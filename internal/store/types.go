package store

import "time"

// Briefing is a workflow-produced record. IDs are sqlite autoincrement
// integers and are treated as opaque by everything outside this package.
type Briefing struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	SourcePath   string    `json:"source_path"`
	Body         string    `json:"body,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	SummaryReady bool      `json:"summary_ready"`
	CreatedAt    time.Time `json:"created_at"`
	SummarizedAt time.Time `json:"summarized_at"`
}

type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type RefreshToken struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

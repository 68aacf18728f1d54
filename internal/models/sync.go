package models

import "time"

// Sync log states: a log starts in running and finishes in success or error
const (
	SyncStatusRunning = "running"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// SyncLog records one per-agency sync invocation from start to finish
type SyncLog struct {
	ID         string         `json:"id" db:"id"`
	Source     string         `json:"source" db:"source"`
	StartedAt  time.Time      `json:"started_at" db:"started_at"`
	FinishedAt time.Time      `json:"finished_at" db:"finished_at"`
	Status     string         `json:"status" db:"status"`
	Fetched    int            `json:"fetched" db:"fetched"`
	Inserted   int            `json:"inserted" db:"inserted"`
	Skipped    int            `json:"skipped" db:"skipped"`
	Errors     []string       `json:"errors" db:"errors"`
	Results    map[string]any `json:"results" db:"results"`
}

// FeedResult reports the outcome of processing a single feed within a sync
type FeedResult struct {
	Agency    string `json:"agency"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	Fetched   int    `json:"fetched"`
	Processed int    `json:"processed"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// SyncReport is the JSON summary returned for a sync invocation
type SyncReport struct {
	Success          bool         `json:"success"`
	Message          string       `json:"message"`
	TotalFetched     int          `json:"total_fetched"`
	TotalProcessed   int          `json:"total_processed"`
	TotalSkipped     int          `json:"total_skipped"`
	ProcessingTimeMS int64        `json:"processing_time_ms"`
	FeedResults      []FeedResult `json:"feed_results"`
	Errors           []string     `json:"errors,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}

// DataFreshness is the rolling last-known sync state for one source
type DataFreshness struct {
	SourceName          string    `json:"source_name" db:"source_name"`
	LastSuccessfulFetch time.Time `json:"last_successful_fetch" db:"last_successful_fetch"`
	LastAttempt         time.Time `json:"last_attempt" db:"last_attempt"`
	Status              string    `json:"status" db:"status"`
	RecordsFetched      int       `json:"records_fetched" db:"records_fetched"`
	ErrorMessage        string    `json:"error_message" db:"error_message"`
}

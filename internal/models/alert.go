package models

import "time"

// Urgency levels attached to alerts for sorting and filtering
const (
	UrgencyHigh   = "High"
	UrgencyMedium = "Medium"
	UrgencyLow    = "Low"
)

// Alert represents a regulatory alert ingested from an agency feed
type Alert struct {
	ID            string    `json:"id" db:"id"`
	DedupKey      string    `json:"-" db:"dedup_key"`
	Title         string    `json:"title" db:"title"`
	Source        string    `json:"source" db:"source"`
	Urgency       string    `json:"urgency" db:"urgency"`
	Summary       string    `json:"summary" db:"summary"`
	PublishedDate time.Time `json:"published_date" db:"published_date"`
	ExternalURL   string    `json:"external_url" db:"external_url"`
	FullContent   string    `json:"full_content" db:"full_content"`
	Agency        string    `json:"agency" db:"agency"`
	Region        string    `json:"region" db:"region"`
	Category      string    `json:"category" db:"category"`
	DateSuspect   bool      `json:"date_suspect" db:"date_suspect"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// AlertQuery represents query parameters for filtering alerts
type AlertQuery struct {
	IDs        []string  `json:"ids"`
	Sources    []string  `json:"sources"`
	Agencies   []string  `json:"agencies"`
	Urgencies  []string  `json:"urgencies"`
	Categories []string  `json:"categories"`
	Since      time.Time `json:"since"`
	Until      time.Time `json:"until"`
	Limit      int       `json:"limit"`
	Offset     int       `json:"offset"`
}

// Matches checks if an alert matches the query criteria
func (q AlertQuery) Matches(alert Alert) bool {
	if len(q.IDs) > 0 && !contains(q.IDs, alert.ID) {
		return false
	}
	if len(q.Sources) > 0 && !contains(q.Sources, alert.Source) {
		return false
	}
	if len(q.Agencies) > 0 && !contains(q.Agencies, alert.Agency) {
		return false
	}
	if len(q.Urgencies) > 0 && !contains(q.Urgencies, alert.Urgency) {
		return false
	}
	if len(q.Categories) > 0 && !contains(q.Categories, alert.Category) {
		return false
	}
	if !q.Since.IsZero() && alert.PublishedDate.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && alert.PublishedDate.After(q.Until) {
		return false
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

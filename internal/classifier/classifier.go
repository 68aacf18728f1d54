package classifier

import (
	"strings"

	"github.com/regiq/regiq/internal/feed"
	"github.com/regiq/regiq/internal/models"
	"github.com/regiq/regiq/pkg/utils"
)

// Urgency keyword tiers, scanned in order: a high-tier match always wins
// over a medium-tier one regardless of position or count.
var (
	highUrgencyKeywords = []string{
		"recall", "emergency", "outbreak", "contamination", "death",
		"illness", "warning", "alert", "danger", "hazard", "critical",
		"fatal", "hospitalized",
	}

	mediumUrgencyKeywords = []string{
		"advisory", "closure", "violation", "enforcement", "new",
		"update", "guidance", "investigation", "inspection", "notice",
	}
)

// Classifier provides relevance filtering and urgency classification
type Classifier struct{}

// New creates a new classifier instance
func New() *Classifier {
	return &Classifier{}
}

// Relevant reports whether an item matches any of the feed's keywords.
// The match is a case-insensitive substring over title plus description,
// not word-boundary-aware; an empty keyword list matches nothing.
func (c *Classifier) Relevant(item feed.Item, keywords []string) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	for _, keyword := range keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Urgency assigns High, Medium, or the feed's configured default by
// scanning the combined lowercased text against the keyword tiers.
func (c *Classifier) Urgency(title, description, fallback string) string {
	text := strings.ToLower(title + " " + description)

	if utils.ContainsAny(text, highUrgencyKeywords) {
		return models.UrgencyHigh
	}
	if utils.ContainsAny(text, mediumUrgencyKeywords) {
		return models.UrgencyMedium
	}
	if fallback == "" {
		return models.UrgencyLow
	}
	return fallback
}

package models

import (
	"testing"
	"time"
)

func TestAlertQuery_Matches(t *testing.T) {
	now := time.Now().UTC()
	alert := Alert{
		ID:            "a1",
		Title:         "Salmonella outbreak in imported shrimp",
		Source:        "fda_recalls",
		Agency:        "FDA",
		Urgency:       UrgencyHigh,
		Category:      "food_safety",
		PublishedDate: now,
	}

	tests := []struct {
		name  string
		query AlertQuery
		want  bool
	}{
		{"empty query matches", AlertQuery{}, true},
		{"matching source", AlertQuery{Sources: []string{"fda_recalls"}}, true},
		{"non-matching source", AlertQuery{Sources: []string{"fsis_recalls"}}, false},
		{"matching agency", AlertQuery{Agencies: []string{"FDA"}}, true},
		{"matching urgency", AlertQuery{Urgencies: []string{UrgencyHigh}}, true},
		{"non-matching urgency", AlertQuery{Urgencies: []string{UrgencyLow}}, false},
		{"since before published", AlertQuery{Since: now.Add(-time.Hour)}, true},
		{"since after published", AlertQuery{Since: now.Add(time.Hour)}, false},
		{"until before published", AlertQuery{Until: now.Add(-time.Hour)}, false},
		{"id match", AlertQuery{IDs: []string{"a1"}}, true},
		{"id mismatch", AlertQuery{IDs: []string{"a2"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(alert); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

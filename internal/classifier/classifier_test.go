package classifier

import (
	"testing"

	"github.com/regiq/regiq/internal/feed"
	"github.com/regiq/regiq/internal/models"
)

func TestClassifier_Relevant(t *testing.T) {
	c := New()

	tests := []struct {
		name     string
		item     feed.Item
		keywords []string
		want     bool
	}{
		{
			name:     "keyword in title",
			item:     feed.Item{Title: "Salmonella Outbreak", Description: ""},
			keywords: []string{"salmonella"},
			want:     true,
		},
		{
			name:     "keyword in description",
			item:     feed.Item{Title: "Agency Notice", Description: "elevated mercury levels in seafood"},
			keywords: []string{"mercury", "seafood"},
			want:     true,
		},
		{
			name:     "no keyword match",
			item:     feed.Item{Title: "Annual Budget Report", Description: ""},
			keywords: []string{"mercury", "seafood"},
			want:     false,
		},
		{
			name:     "substring match is not word-boundary aware",
			item:     feed.Item{Title: "Education policy update", Description: ""},
			keywords: []string{"cat"},
			want:     true,
		},
		{
			name:     "case insensitive",
			item:     feed.Item{Title: "RECALL NOTICE", Description: ""},
			keywords: []string{"recall"},
			want:     true,
		},
		{
			name:     "empty keywords match nothing",
			item:     feed.Item{Title: "Anything at all", Description: "text"},
			keywords: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Relevant(tt.item, tt.keywords); got != tt.want {
				t.Errorf("Relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_Urgency(t *testing.T) {
	c := New()

	tests := []struct {
		name        string
		title       string
		description string
		fallback    string
		want        string
	}{
		{"high keyword", "Product Recall Issued", "", "Low", models.UrgencyHigh},
		{"medium keyword", "New guidance for importers", "", "Low", models.UrgencyMedium},
		{"high wins over medium", "Recall following failed inspection", "new guidance issued", "Low", models.UrgencyHigh},
		{"tier order not keyword count", "advisory advisory advisory", "outbreak", "Low", models.UrgencyHigh},
		{"fallback to feed default", "Quarterly fisheries report", "catch statistics", "Medium", models.UrgencyMedium},
		{"empty fallback defaults low", "Quarterly fisheries report", "catch statistics", "", models.UrgencyLow},
		{"case insensitive", "OUTBREAK declared", "", "Low", models.UrgencyHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Urgency(tt.title, tt.description, tt.fallback); got != tt.want {
				t.Errorf("Urgency() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifier_UrgencyDeterministic(t *testing.T) {
	c := New()
	for i := 0; i < 10; i++ {
		if got := c.Urgency("contamination and advisory", "", "Low"); got != models.UrgencyHigh {
			t.Fatalf("Expected High on every run, got %q", got)
		}
	}
}

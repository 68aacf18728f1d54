package gapdetect

import (
	"context"
	"testing"
	"time"

	"github.com/regiq/regiq/internal/models"
	"github.com/regiq/regiq/internal/store"
)

func makeAlert(id, title, summary string) models.Alert {
	return models.Alert{
		ID:            id,
		DedupKey:      "dedup-" + id,
		Title:         title,
		Source:        "fda_recalls",
		Agency:        "FDA",
		Urgency:       models.UrgencyHigh,
		Summary:       summary,
		PublishedDate: time.Now().UTC(),
	}
}

func TestDetectProcessFailure_ReinspectionBypass(t *testing.T) {
	alert := makeAlert("a1", "Imported seafood recall",
		"Shipment bypassed reinspection at the port of entry")

	pattern, ok := DetectProcessFailure(alert, DefaultConfidence)
	if !ok {
		t.Fatal("DetectProcessFailure() ok = false, want finding")
	}
	if pattern.FailureType != FailureReinspectionBypass {
		t.Errorf("failure type = %q, want %q", pattern.FailureType, FailureReinspectionBypass)
	}
	if pattern.Severity != models.SeverityHigh {
		t.Errorf("severity = %q, want high", pattern.Severity)
	}
	want := []string{"Import Control System", "FDA Reinspection Process", "Border Security"}
	if len(pattern.AffectedSystems) != len(want) {
		t.Fatalf("affected systems = %v, want %v", pattern.AffectedSystems, want)
	}
	for i, s := range want {
		if pattern.AffectedSystems[i] != s {
			t.Errorf("affected systems[%d] = %q, want %q", i, pattern.AffectedSystems[i], s)
		}
	}
	if pattern.AlertID != "a1" {
		t.Errorf("alert ID = %q, want a1", pattern.AlertID)
	}
}

func TestDetectProcessFailure_TierOrder(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantType     string
		wantSeverity string
	}{
		{
			name:         "process breakdown",
			text:         "Facility failed to follow sanitation procedures",
			wantType:     FailureProcessBreakdown,
			wantSeverity: models.SeverityMedium,
		},
		{
			name:         "administrative failure",
			text:         "Product misbranded with incorrect labeling",
			wantType:     FailureAdministrativeLapses,
			wantSeverity: models.SeverityMedium,
		},
		{
			name:         "reinspection wins over breakdown",
			text:         "Importer avoided reinspection after the facility failed to follow protocol",
			wantType:     FailureReinspectionBypass,
			wantSeverity: models.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern, ok := DetectProcessFailure(makeAlert("a1", tt.text, ""), DefaultConfidence)
			if !ok {
				t.Fatal("DetectProcessFailure() ok = false, want finding")
			}
			if pattern.FailureType != tt.wantType {
				t.Errorf("failure type = %q, want %q", pattern.FailureType, tt.wantType)
			}
			if pattern.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", pattern.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestDetectProcessFailure_NoMatch(t *testing.T) {
	alert := makeAlert("a1", "Annual seafood consumption report", "Statistics for 2025")
	if _, ok := DetectProcessFailure(alert, DefaultConfidence); ok {
		t.Error("DetectProcessFailure() ok = true for benign text, want false")
	}
}

func TestDefaultConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"base score", "routine inspection notice", 50},
		{"recall adds 30", "voluntary recall issued", 80},
		{"violation adds 20", "violation of import rules", 70},
		{"all corroborations capped", "repeat recall violation", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultConfidence(tt.text); got != tt.want {
				t.Errorf("DefaultConfidence(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestDetectImportGap(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		summary  string
		wantOK   bool
		wantType string
		wantRisk string
	}{
		{
			name:    "no import signal",
			title:   "Local dairy recall",
			summary: "Milk recalled in three states",
			wantOK:  false,
		},
		{
			name:     "reinspection bypass has top priority",
			title:    "Import alert",
			summary:  "Shipment bypassed reinspection and lacked valid certification",
			wantOK:   true,
			wantType: models.GapReinspectionBypass,
			wantRisk: models.SeverityHigh,
		},
		{
			name:     "certification missing",
			title:    "Customs hold on seafood",
			summary:  "Entry flagged for missing export certification",
			wantOK:   true,
			wantType: models.GapCertificationMissing,
			wantRisk: models.SeverityMedium,
		},
		{
			name:     "documentation gap default",
			title:    "Foreign supplier notice",
			summary:  "International shipment held at the border",
			wantOK:   true,
			wantType: models.GapDocumentation,
			wantRisk: models.SeverityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gap, ok := DetectImportGap(makeAlert("a1", tt.title, tt.summary))
			if ok != tt.wantOK {
				t.Fatalf("DetectImportGap() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if gap.GapType != tt.wantType {
				t.Errorf("gap type = %q, want %q", gap.GapType, tt.wantType)
			}
			if gap.RiskLevel != tt.wantRisk {
				t.Errorf("risk level = %q, want %q", gap.RiskLevel, tt.wantRisk)
			}
		})
	}
}

func TestDetectImportGap_VocabularyExtraction(t *testing.T) {
	alert := makeAlert("a1", "Import alert: shrimp from Vietnam",
		"Walmart recalled imported shrimp after customs review")

	gap, ok := DetectImportGap(alert)
	if !ok {
		t.Fatal("DetectImportGap() ok = false, want finding")
	}
	if gap.ProductType != "shrimp" {
		t.Errorf("product type = %q, want shrimp", gap.ProductType)
	}
	if gap.OriginCountry != "Vietnam" {
		t.Errorf("origin country = %q, want Vietnam", gap.OriginCountry)
	}
	if gap.Importer != "Walmart" {
		t.Errorf("importer = %q, want Walmart", gap.Importer)
	}
}

func TestIndicatorRollups(t *testing.T) {
	patterns := []models.ProcessFailurePattern{
		{AlertID: "a1", Severity: models.SeverityHigh, AffectedSystems: []string{"Border Security"}},
		{AlertID: "a2", Severity: models.SeverityMedium, AffectedSystems: []string{"Quality Control"}},
	}

	ind := BuildProcessFailureIndicator(patterns)
	if ind.IndicatorType != IndicatorProcessFailure {
		t.Errorf("indicator type = %q, want %q", ind.IndicatorType, IndicatorProcessFailure)
	}
	if ind.RiskScore != 50 { // 30 + 20*1 high
		t.Errorf("risk score = %d, want 50", ind.RiskScore)
	}
	if ind.Trend != models.TrendWorsening {
		t.Errorf("trend = %q, want worsening", ind.Trend)
	}
	if len(ind.ContributingAlerts) != 2 {
		t.Errorf("contributing alerts = %v, want 2 entries", ind.ContributingAlerts)
	}

	// Risk score is capped at 90 regardless of count.
	many := make([]models.ProcessFailurePattern, 5)
	for i := range many {
		many[i] = models.ProcessFailurePattern{AlertID: "x", Severity: models.SeverityHigh}
	}
	if got := BuildProcessFailureIndicator(many).RiskScore; got != 90 {
		t.Errorf("risk score with 5 high findings = %d, want capped 90", got)
	}

	// No high findings means stable trend and floor score.
	calm := BuildImportGapIndicator([]models.ImportComplianceGap{
		{AlertID: "a1", RiskLevel: models.SeverityLow},
	})
	if calm.RiskScore != 30 || calm.Trend != models.TrendStable {
		t.Errorf("calm indicator = score %d trend %q, want 30/stable", calm.RiskScore, calm.Trend)
	}
}

func TestDetector_Analyze(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	alerts := []models.Alert{
		makeAlert("a1", "Import recall", "Shipment bypassed reinspection at the border"),
		makeAlert("a2", "Facility notice", "Facility failed to follow sanitation procedures"),
		makeAlert("a3", "Budget report", "Quarterly figures released"),
	}
	for _, a := range alerts {
		if _, err := s.InsertAlert(ctx, a); err != nil {
			t.Fatalf("InsertAlert() error = %v", err)
		}
	}

	d := NewDetector(s, 100, nil)
	report, err := d.Analyze(ctx, nil, true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !report.Success {
		t.Error("Analyze() success = false, want true")
	}
	if report.AnalyzedCount != 3 {
		t.Errorf("analyzed count = %d, want 3", report.AnalyzedCount)
	}
	if report.ProcessFailuresDetected != 2 {
		t.Errorf("process failures = %d, want 2", report.ProcessFailuresDetected)
	}
	if report.ImportGapsDetected != 1 {
		t.Errorf("import gaps = %d, want 1", report.ImportGapsDetected)
	}

	inds, err := s.ListGapIndicators(ctx)
	if err != nil {
		t.Fatalf("ListGapIndicators() error = %v", err)
	}
	if len(inds) != 2 {
		t.Errorf("indicators = %d, want one per analyzer family", len(inds))
	}
}

func TestDetector_AnalyzeIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	alert := makeAlert("a1", "Import recall", "Shipment bypassed reinspection at the border")
	if _, err := s.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert() error = %v", err)
	}

	d := NewDetector(s, 100, nil)
	for i := 0; i < 2; i++ {
		if _, err := d.Analyze(ctx, []string{"a1"}, false); err != nil {
			t.Fatalf("Analyze() run %d error = %v", i+1, err)
		}
	}

	if s.ProcessFailureCount() != 1 {
		t.Errorf("process failure rows = %d after re-analysis, want 1", s.ProcessFailureCount())
	}
	if s.ImportGapCount() != 1 {
		t.Errorf("import gap rows = %d after re-analysis, want 1", s.ImportGapCount())
	}
}

func TestDetector_NoSelection(t *testing.T) {
	s := store.NewMemoryStore()
	d := NewDetector(s, 100, nil)

	report, err := d.Analyze(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.AnalyzedCount != 0 {
		t.Errorf("analyzed count = %d with no selection, want 0", report.AnalyzedCount)
	}
}

func TestDetector_CustomScoreFunc(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	alert := makeAlert("a1", "Import recall", "Shipment bypassed reinspection at the border")
	if _, err := s.InsertAlert(ctx, alert); err != nil {
		t.Fatalf("InsertAlert() error = %v", err)
	}

	fixed := func(string) int { return 42 }
	d := NewDetector(s, 100, fixed)
	report, err := d.Analyze(ctx, []string{"a1"}, false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Patterns) != 1 || report.Patterns[0].Confidence != 42 {
		t.Errorf("patterns = %+v, want single finding with confidence 42", report.Patterns)
	}
}

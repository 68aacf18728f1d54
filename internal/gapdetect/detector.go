package gapdetect

import (
	"context"
	"sort"
	"strings"

	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/logger"
	"github.com/regiq/regiq/internal/metrics"
	"github.com/regiq/regiq/internal/models"
)

// Store is the persistence surface the detector needs.
type Store interface {
	ListAlertsForAnalysis(ctx context.Context, ids []string, analyzeAll bool, limit int) ([]models.Alert, error)
	UpsertProcessFailurePattern(ctx context.Context, p models.ProcessFailurePattern) error
	UpsertImportComplianceGap(ctx context.Context, g models.ImportComplianceGap) error
	UpsertGapIndicator(ctx context.Context, ind models.RegulatoryGapIndicator) error
}

// Detector re-reads stored alerts and applies the pattern analyzers,
// persisting per-alert findings and system-wide indicators.
type Detector struct {
	store      Store
	score      ScoreFunc
	batchLimit int
}

// NewDetector creates a detector. A nil score function selects
// DefaultConfidence.
func NewDetector(store Store, batchLimit int, score ScoreFunc) *Detector {
	if score == nil {
		score = DefaultConfidence
	}
	return &Detector{store: store, score: score, batchLimit: batchLimit}
}

// Analyze runs both analyzers over the selected alerts: the given IDs
// when present, otherwise the most recent alerts when analyzeAll is set.
// Findings are upserted keyed by alert ID, so re-analysis overwrites
// rather than duplicates.
func (d *Detector) Analyze(ctx context.Context, ids []string, analyzeAll bool) (*models.GapReport, error) {
	alerts, err := d.store.ListAlertsForAnalysis(ctx, ids, analyzeAll, d.batchLimit)
	if err != nil {
		return nil, &apperrors.DetectorError{Analyzer: "batch", Err: err}
	}

	report := &models.GapReport{
		Success:  true,
		Patterns: []models.ProcessFailurePattern{},
		Gaps:     []models.ImportComplianceGap{},
	}

	for _, alert := range alerts {
		report.AnalyzedCount++

		if pattern, ok := DetectProcessFailure(alert, d.score); ok {
			if err := d.store.UpsertProcessFailurePattern(ctx, pattern); err != nil {
				logger.Error("Failed to store process failure pattern",
					"alert_id", alert.ID, "error", err)
				metrics.RecordGapAnalysis("process_failure", "error")
			} else {
				report.Patterns = append(report.Patterns, pattern)
				report.ProcessFailuresDetected++
				metrics.RecordGapAnalysis("process_failure", "detected")
			}
		}

		if gap, ok := DetectImportGap(alert); ok {
			if err := d.store.UpsertImportComplianceGap(ctx, gap); err != nil {
				logger.Error("Failed to store import compliance gap",
					"alert_id", alert.ID, "error", err)
				metrics.RecordGapAnalysis("import_compliance", "error")
			} else {
				report.Gaps = append(report.Gaps, gap)
				report.ImportGapsDetected++
				metrics.RecordGapAnalysis("import_compliance", "detected")
			}
		}
	}

	if report.AnalyzedCount > 0 {
		if err := d.store.UpsertGapIndicator(ctx, BuildProcessFailureIndicator(report.Patterns)); err != nil {
			logger.Error("Failed to store process failure indicator", "error", err)
		}
		if err := d.store.UpsertGapIndicator(ctx, BuildImportGapIndicator(report.Gaps)); err != nil {
			logger.Error("Failed to store import compliance indicator", "error", err)
		}
	}

	logger.Info("Gap analysis complete",
		"analyzed", report.AnalyzedCount,
		"process_failures", report.ProcessFailuresDetected,
		"import_gaps", report.ImportGapsDetected,
	)
	return report, nil
}

// alertText is the combined lowercased text both analyzers match against.
func alertText(alert models.Alert) string {
	return strings.ToLower(alert.Title + " " + alert.Summary)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

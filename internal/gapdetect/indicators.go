package gapdetect

import (
	"github.com/regiq/regiq/internal/models"
)

// Indicator types, one per analyzer family
const (
	IndicatorProcessFailure   = "process_failure"
	IndicatorImportCompliance = "import_compliance"
)

// BuildProcessFailureIndicator rolls a batch of process failure findings
// into the system-wide process failure indicator. Risk score grows with
// the count of high-severity findings, capped at 90.
func BuildProcessFailureIndicator(patterns []models.ProcessFailurePattern) models.RegulatoryGapIndicator {
	high := 0
	areas := map[string]bool{}
	alerts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p.Severity == models.SeverityHigh {
			high++
		}
		for _, s := range p.AffectedSystems {
			areas[s] = true
		}
		alerts = append(alerts, p.AlertID)
	}

	risk := riskScore(high)
	return models.RegulatoryGapIndicator{
		IndicatorType:      IndicatorProcessFailure,
		RiskScore:          risk,
		Trend:              trendFor(high),
		AffectedAreas:      sortedKeys(areas),
		ContributingAlerts: alerts,
		Description:        "Regulatory process failure signatures detected in recent alerts",
		RecommendedActions: []string{
			"Review affected inspection and control processes",
			"Prioritize follow-up on high-severity findings",
		},
		Priority: priorityFor(risk),
	}
}

// BuildImportGapIndicator rolls a batch of import compliance findings into
// the system-wide import compliance indicator.
func BuildImportGapIndicator(gaps []models.ImportComplianceGap) models.RegulatoryGapIndicator {
	high := 0
	areas := map[string]bool{}
	alerts := make([]string, 0, len(gaps))
	for _, g := range gaps {
		if g.RiskLevel == models.SeverityHigh {
			high++
		}
		if g.ProductType != "" {
			areas[g.ProductType] = true
		}
		if g.OriginCountry != "" {
			areas[g.OriginCountry] = true
		}
		alerts = append(alerts, g.AlertID)
	}

	risk := riskScore(high)
	return models.RegulatoryGapIndicator{
		IndicatorType:      IndicatorImportCompliance,
		RiskScore:          risk,
		Trend:              trendFor(high),
		AffectedAreas:      sortedKeys(areas),
		ContributingAlerts: alerts,
		Description:        "Import compliance weaknesses detected in recent alerts",
		RecommendedActions: []string{
			"Verify certification and entry documentation for flagged shipments",
			"Escalate reinspection bypass findings to import control",
		},
		Priority: priorityFor(risk),
	}
}

// riskScore is the fixed rollup formula: min(90, 30 + 20 per
// high-severity finding).
func riskScore(highCount int) int {
	risk := 30 + 20*highCount
	if risk > 90 {
		risk = 90
	}
	return risk
}

func trendFor(highCount int) string {
	if highCount > 0 {
		return models.TrendWorsening
	}
	return models.TrendStable
}

func priorityFor(risk int) string {
	switch {
	case risk >= 70:
		return models.SeverityHigh
	case risk >= 50:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

package models

// Severity / risk labels produced by the gap detector
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Gap types for import compliance findings, highest priority first
const (
	GapReinspectionBypass   = "reinspection_bypass"
	GapCertificationMissing = "certification_missing"
	GapDocumentation        = "documentation_gap"
)

// Trend directions for system-wide indicators
const (
	TrendWorsening = "worsening"
	TrendStable    = "stable"
)

// ProcessFailurePattern is a per-alert finding of a regulatory process
// breakdown signature, keyed by alert ID so re-analysis overwrites
type ProcessFailurePattern struct {
	AlertID         string         `json:"alert_id" db:"alert_id"`
	FailureType     string         `json:"failure_type" db:"failure_type"`
	Severity        string         `json:"severity" db:"severity"`
	AffectedSystems []string       `json:"affected_systems" db:"affected_systems"`
	RootCause       map[string]any `json:"root_cause" db:"root_cause"`
	Remediation     map[string]any `json:"remediation" db:"remediation"`
	Confidence      int            `json:"confidence" db:"confidence"`
}

// ImportComplianceGap is a per-alert finding of a weakness in import
// controls, keyed by alert ID
type ImportComplianceGap struct {
	AlertID             string         `json:"alert_id" db:"alert_id"`
	GapType             string         `json:"gap_type" db:"gap_type"`
	RiskLevel           string         `json:"risk_level" db:"risk_level"`
	MissedRequirements  []string       `json:"missed_requirements" db:"missed_requirements"`
	ProductType         string         `json:"product_type" db:"product_type"`
	OriginCountry       string         `json:"origin_country" db:"origin_country"`
	Importer            string         `json:"importer" db:"importer"`
	RemediationTimeline string         `json:"remediation_timeline" db:"remediation_timeline"`
	Details             map[string]any `json:"details" db:"details"`
}

// RegulatoryGapIndicator is a coarse system-wide rollup, one row per
// indicator type, fully overwritten on each analysis run
type RegulatoryGapIndicator struct {
	IndicatorType      string   `json:"indicator_type" db:"indicator_type"`
	RiskScore          int      `json:"risk_score" db:"risk_score"`
	Trend              string   `json:"trend" db:"trend"`
	AffectedAreas      []string `json:"affected_areas" db:"affected_areas"`
	ContributingAlerts []string `json:"contributing_alerts" db:"contributing_alerts"`
	Description        string   `json:"description" db:"description"`
	RecommendedActions []string `json:"recommended_actions" db:"recommended_actions"`
	Priority           string   `json:"priority" db:"priority"`
}

// GapReport is the JSON summary returned for a gap-analysis invocation
type GapReport struct {
	Success                 bool                    `json:"success"`
	AnalyzedCount           int                     `json:"analyzed_count"`
	ProcessFailuresDetected int                     `json:"process_failures_detected"`
	ImportGapsDetected      int                     `json:"import_gaps_detected"`
	Patterns                []ProcessFailurePattern `json:"patterns"`
	Gaps                    []ImportComplianceGap   `json:"gaps"`
}

package gapdetect

import (
	"regexp"

	"github.com/regiq/regiq/internal/models"
)

// Process failure types, in the order groups are tested
const (
	FailureReinspectionBypass   = "import_reinspection_bypass"
	FailureProcessBreakdown     = "process_breakdown"
	FailureAdministrativeLapses = "administrative_failure"
)

// failureGroup is one ordered indicator group. The first group whose
// patterns match the alert text wins; later groups are not consulted.
type failureGroup struct {
	failureType string
	severity    string
	systems     []string
	remediation string
	patterns    []*regexp.Regexp
}

var failureGroups = []failureGroup{
	{
		failureType: FailureReinspectionBypass,
		severity:    models.SeverityHigh,
		systems:     []string{"Import Control System", "FDA Reinspection Process", "Border Security"},
		remediation: "Audit import entries for the affected product line and re-run physical reinspection",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`reinspection.{0,40}(bypass|avoid|evad|skip|circumvent)`),
			regexp.MustCompile(`(bypass|avoid|evad|skip|circumvent).{0,40}reinspection`),
			regexp.MustCompile(`import(ed)?.{0,40}without.{0,40}(re)?inspection`),
			regexp.MustCompile(`refused.{0,40}(entry|shipment).{0,40}re-?enter`),
		},
	},
	{
		failureType: FailureProcessBreakdown,
		severity:    models.SeverityMedium,
		systems:     []string{"Quality Control", "Inspection Process"},
		remediation: "Review the facility's control procedures and verify corrective actions",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(process|procedure|protocol|control).{0,40}(failure|breakdown|lapse|deficien)`),
			regexp.MustCompile(`fail(ed|ure)? to (follow|comply|maintain|inspect|verify|monitor)`),
			regexp.MustCompile(`(sanitation|sanitary|haccp).{0,40}(violation|deficien|failure)`),
			regexp.MustCompile(`inadequate (controls?|monitoring|testing|procedures?)`),
		},
	},
	{
		failureType: FailureAdministrativeLapses,
		severity:    models.SeverityMedium,
		systems:     []string{"Documentation System", "Administrative Review"},
		remediation: "Reconcile filings and correct labeling or record-keeping defects",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(paperwork|documentation|record|registration).{0,40}(error|missing|incomplete|failure|lapse)`),
			regexp.MustCompile(`(improper|incorrect|missing|undeclared) (label|labeling|declaration|filing|listing)`),
			regexp.MustCompile(`misbrand(ed|ing)`),
		},
	},
}

// DetectProcessFailure tests the alert text against the ordered indicator
// groups and returns a finding for the first group that matches. The
// boolean result is false when no group fires.
func DetectProcessFailure(alert models.Alert, score ScoreFunc) (models.ProcessFailurePattern, bool) {
	text := alertText(alert)
	for _, g := range failureGroups {
		matched := firstMatch(g.patterns, text)
		if matched == "" {
			continue
		}
		return models.ProcessFailurePattern{
			AlertID:         alert.ID,
			FailureType:     g.failureType,
			Severity:        g.severity,
			AffectedSystems: g.systems,
			RootCause: map[string]any{
				"matched_phrase": matched,
				"source":         alert.Source,
				"agency":         alert.Agency,
			},
			Remediation: map[string]any{
				"recommended": g.remediation,
			},
			Confidence: score(text),
		}, true
	}
	return models.ProcessFailurePattern{}, false
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

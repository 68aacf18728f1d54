package gapdetect

import (
	"regexp"
	"strings"

	"github.com/regiq/regiq/internal/models"
)

// importGateKeywords gates the import-compliance analyzer: an alert with
// none of these words is not an import story and produces no finding.
var importGateKeywords = []string{
	"import", "customs", "border", "entry", "foreign", "international",
}

// Small fixed vocabularies for entity extraction. These are deliberately
// short substring lists, not NER.
var (
	productVocabulary = []string{
		"seafood", "shrimp", "fish", "shellfish", "produce", "vegetable",
		"fruit", "spice", "dairy", "cheese", "meat", "poultry", "supplement",
	}
	countryVocabulary = []string{
		"China", "India", "Mexico", "Vietnam", "Thailand", "Indonesia",
		"Ecuador", "Chile", "Brazil", "Canada", "Japan", "Philippines",
	}
	importerVocabulary = []string{
		"Walmart", "Costco", "Kroger", "Whole Foods", "Trader Joe's",
	}
)

var (
	certificationMissingRe = regexp.MustCompile(`(certificat\w*|certified).{0,50}(missing|lack\w*|without|expired|invalid|absent)`)
	missingCertificationRe = regexp.MustCompile(`(missing|lack\w*|without|expired|invalid|no) .{0,30}certificat`)
)

// gapProfile maps a gap type to its fixed risk level, remediation
// timeline, and the requirements it implies were missed.
type gapProfile struct {
	riskLevel    string
	timeline     string
	requirements []string
}

var gapProfiles = map[string]gapProfile{
	models.GapReinspectionBypass: {
		riskLevel:    models.SeverityHigh,
		timeline:     "immediate",
		requirements: []string{"FDA reinspection", "Import entry review"},
	},
	models.GapCertificationMissing: {
		riskLevel:    models.SeverityMedium,
		timeline:     "30 days",
		requirements: []string{"Valid export certification", "Certificate of analysis"},
	},
	models.GapDocumentation: {
		riskLevel:    models.SeverityLow,
		timeline:     "90 days",
		requirements: []string{"Complete entry documentation"},
	},
}

// DetectImportGap analyzes an alert for import-compliance weaknesses.
// The boolean result is false when the alert has no import signal.
func DetectImportGap(alert models.Alert) (models.ImportComplianceGap, bool) {
	text := alertText(alert)
	if !containsAnyWord(text, importGateKeywords) {
		return models.ImportComplianceGap{}, false
	}

	gapType := classifyGapType(text)
	profile := gapProfiles[gapType]

	return models.ImportComplianceGap{
		AlertID:             alert.ID,
		GapType:             gapType,
		RiskLevel:           profile.riskLevel,
		MissedRequirements:  profile.requirements,
		ProductType:         extractTerm(text, productVocabulary),
		OriginCountry:       extractTerm(text, countryVocabulary),
		Importer:            extractTerm(text, importerVocabulary),
		RemediationTimeline: profile.timeline,
		Details: map[string]any{
			"source": alert.Source,
			"agency": alert.Agency,
		},
	}, true
}

// classifyGapType picks the highest-priority gap type the text supports:
// reinspection bypass, then missing certification, then the default
// documentation gap.
func classifyGapType(text string) string {
	for _, p := range failureGroups[0].patterns {
		if p.MatchString(text) {
			return models.GapReinspectionBypass
		}
	}
	if certificationMissingRe.MatchString(text) || missingCertificationRe.MatchString(text) {
		return models.GapCertificationMissing
	}
	return models.GapDocumentation
}

// extractTerm returns the first vocabulary entry found in the text as a
// case-insensitive substring, or empty when none matches.
func extractTerm(text string, vocabulary []string) string {
	for _, term := range vocabulary {
		if strings.Contains(text, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

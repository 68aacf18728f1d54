package region

import (
	"regexp"
	"sort"
	"strings"
)

// Default is the region recorded when nothing more specific is found in
// the alert text. Every configured agency is a US federal source.
const Default = "US"

var (
	// matches "Seattle, WA" style city-state references
	cityStateRegex = regexp.MustCompile(`\b[A-Z][a-z]+,?\s+([A-Z]{2})\b`)

	nationwideRegex = regexp.MustCompile(`(?i)\b(nationwide|all states|across the (country|united states))\b`)
)

// stateNames maps full state names (lowercased) to postal codes for
// alerts that spell the state out.
var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"florida": "FL", "georgia": "GA", "hawaii": "HI", "idaho": "ID",
	"illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT",
	"vermont": "VT", "virginia": "VA", "washington": "WA", "west virginia": "WV",
	"wisconsin": "WI", "wyoming": "WY",
}

// postalCodes is the reverse set, used to validate regex captures so that
// arbitrary two-letter acronyms are not mistaken for states.
var postalCodes = func() map[string]bool {
	set := make(map[string]bool, len(stateNames))
	for _, code := range stateNames {
		set[code] = true
	}
	return set
}()

// sortedStateNames keeps spelled-out name matching deterministic when an
// alert mentions more than one state.
var sortedStateNames = func() []string {
	names := make([]string, 0, len(stateNames))
	for name := range stateNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}()

// Detect derives the affected region from alert text: a state-scoped
// region like "US-WA" when a city-state reference or a spelled-out state
// name appears, otherwise the nationwide default. Explicit nationwide
// language short-circuits state detection.
func Detect(title, summary string) string {
	text := title + " " + summary

	if nationwideRegex.MatchString(text) {
		return Default
	}

	for _, m := range cityStateRegex.FindAllStringSubmatch(text, -1) {
		if postalCodes[m[1]] {
			return Default + "-" + m[1]
		}
	}

	lower := strings.ToLower(text)
	for _, name := range sortedStateNames {
		if strings.Contains(lower, name) {
			return Default + "-" + stateNames[name]
		}
	}

	return Default
}

package gapdetect

import "strings"

// ScoreFunc computes a pattern-confidence score in [0, 100] from the
// alert's combined lowercased text. It is pluggable so the point-addition
// heuristic can be swapped for a better model without touching the
// analyzers.
type ScoreFunc func(text string) int

// DefaultConfidence starts at a base of 50 and adds fixed points for
// corroborating substrings, capped at 100.
func DefaultConfidence(text string) int {
	score := 50
	if strings.Contains(text, "recall") {
		score += 30
	}
	if strings.Contains(text, "violation") || strings.Contains(text, "enforcement") {
		score += 20
	}
	if strings.Contains(text, "repeat") || strings.Contains(text, "ongoing") {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	return score
}

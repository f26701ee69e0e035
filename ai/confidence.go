package ai

import "strings"

// confidenceIndicators maps self-reported confidence language to a score.
// Ordered: longer, more specific phrases must be checked before their
// substrings ("highly confident" before "confident").
var confidenceIndicators = []struct {
	phrase string
	score  float64
}{
	{"highly confident", 0.9},
	{"very confident", 0.85},
	{"somewhat confident", 0.7},
	{"moderately confident", 0.6},
	{"not confident", 0.2},
	{"confident", 0.8},
	{"uncertain", 0.4},
}

// ExtractConfidence derives a confidence score in [0,1] from generated text.
// Explicit confidence language wins; otherwise the score falls back to a
// length/structure heuristic.
func ExtractConfidence(text string) float64 {
	lower := strings.ToLower(text)

	for _, indicator := range confidenceIndicators {
		if strings.Contains(lower, indicator.phrase) {
			return indicator.score
		}
	}

	if len(text) > 500 && containsConclusion(lower) {
		return 0.75
	}
	if len(text) > 200 {
		return 0.6
	}
	return 0.4
}

func containsConclusion(lower string) bool {
	for _, keyword := range []string{"therefore", "conclude", "hold"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

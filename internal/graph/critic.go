package graph

import "strings"

// Phrases that signal retrieved context (or an answer built on it) does not
// actually address the question.
var insufficientMarkers = []string{
	"not relevant",
	"no relevant",
	"irrelevant",
	"does not contain",
	"doesn't contain",
	"not enough information",
	"insufficient",
}

// contextInsufficient decides whether the web should be consulted.
func contextInsufficient(context, answer string, minLength int) bool {
	trimmed := strings.TrimSpace(context)
	if trimmed == "" || len(trimmed) < minLength {
		return true
	}
	return hasMarker(trimmed) || hasMarker(answer)
}

func hasMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, m := range insufficientMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

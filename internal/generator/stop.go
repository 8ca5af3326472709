package generator

import "strings"

// DefaultStopMarkers terminate Phi-3 style chat templates. Applied when a
// request supplies no markers of its own.
var DefaultStopMarkers = []string{"<|end|>", "<|user|>", "<|assistant|>", "<|system|>"}

// findStop returns the byte offset and marker of the earliest match in text.
func findStop(text string, markers []string) (int, string, bool) {
	best := -1
	var hit string
	for _, m := range markers {
		if m == "" {
			continue
		}
		if i := strings.Index(text, m); i >= 0 && (best < 0 || i < best) {
			best, hit = i, m
		}
	}
	return best, hit, best >= 0
}

// containsStopSuffix reports whether text ends in a proper prefix of any
// marker. Emission is held back until the potential match resolves, so
// marker text split across tokens is never delivered to the caller.
func containsStopSuffix(text string, markers []string) bool {
	for _, m := range markers {
		for l := len(m) - 1; l > 0; l-- {
			if strings.HasSuffix(text, m[:l]) {
				return true
			}
		}
	}
	return false
}

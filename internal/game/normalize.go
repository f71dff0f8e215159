package game

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalize trims, collapses inner whitespace and case-folds s. Comparison
// only; stored values are never rewritten.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers are stateful and not safe for concurrent use.
	return cases.Fold().String(s)
}

// normalizeSet normalizes every element, dropping empties and any element
// for which skip returns true.
func normalizeSet(in []string, skip func(string) bool) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, v := range in {
		n := normalize(v)
		if n == "" || (skip != nil && skip(n)) {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

// isRemote matches the "remote" family of region tags ("Remote",
// "Fully Remote", "Remote (US)").
func isRemote(normalized string) bool {
	return strings.Contains(normalized, "remote")
}

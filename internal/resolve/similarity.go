package resolve

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two strings in [0,1] using the longest-matching-blocks
// ratio over characters: 2*M/T where M is the total matched characters and
// T the combined length. Identical strings score 1, disjoint strings 0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(splitChars(a), splitChars(b))
	return m.Ratio()
}

// splitChars splits a string into per-rune elements for character-level
// sequence matching.
func splitChars(s string) []string {
	return strings.Split(s, "")
}

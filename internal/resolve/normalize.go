// Package resolve implements entity reconciliation: name and code
// normalization, consolidation rules, and fuzzy matching of free-text
// agency names against the canonical ministry/agency registry.
package resolve

import (
	"regexp"
	"strings"
)

// hqSuffixes lists headquarters suffix variants stripped during
// ministry-name normalization. Order matters: dashed forms first so the
// dash is removed together with the token.
var hqSuffixes = []string{
	"- HEADQUARTERS", "- HQTRS", "- HQ", "HEADQUARTERS", "HQTRS", "HQ",
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeName standardizes an entity name for matching:
//  1. Trimming whitespace
//  2. Converting to uppercase
//  3. Replacing "&" with " AND "
//  4. Collapsing whitespace runs into single spaces
//
// Returns "" for empty or blank input. Idempotent.
func NormalizeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	name = strings.ReplaceAll(name, "&", " AND ")
	name = multiSpaceRe.ReplaceAllString(name, " ")

	return strings.TrimSpace(name)
}

// NormalizeMinistryName applies NormalizeName plus headquarters-suffix
// stripping, used when collapsing ministry HQ sub-entities onto their
// parent ministry. Idempotent.
func NormalizeMinistryName(name string) string {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return ""
	}

	for _, suffix := range hqSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSpace(strings.TrimSuffix(normalized, suffix))
		}
	}

	normalized = strings.ReplaceAll(normalized, "&", " AND ")
	normalized = multiSpaceRe.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

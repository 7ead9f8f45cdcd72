package resolve

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizeCode canonicalizes an entity code to the registry's numeric
// convention. Spreadsheet cells frequently surface integer codes as floats
// ("215001.0"), so numeric inputs are accepted alongside strings.
//
// Leading zeros are stripped deliberately: the reference registry's codes do
// not retain them, and joins fail if ingested codes do. Returns "" when no
// digits remain.
func NormalizeCode(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s = v
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return ""
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	s = nonDigitRe.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "0")

	return s
}

// EntityKey builds a grouping key for a budget row's entity: the normalized
// code when present, otherwise a key derived from the normalized name.
// Rows with neither collapse onto the UNKNOWN bucket.
func EntityKey(agencyCode any, agencyName string) string {
	if code := NormalizeCode(agencyCode); code != "" {
		return "CODE_" + code
	}
	if name := NormalizeName(agencyName); name != "" {
		return "NAME_" + name
	}
	return "UNKNOWN"
}

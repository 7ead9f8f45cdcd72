package survey

import (
	"regexp"
	"strings"

	"github.com/govwatch/compliance-cli/internal/resolve"
)

var (
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	ergpCodeRe   = regexp.MustCompile(`^ERGP\d+$`)
)

// ExtractProjectCode splits a composite project-name field into a cleaned
// project name and the embedded ERGP code, if any. Survey forms hold both in
// one hyphen-separated field, with the code trailing either joined
// ("... - ERGP20250001") or split ("... - ERGP - 20250001").
func ExtractProjectCode(projectName string) (cleanedName, code string) {
	if strings.TrimSpace(projectName) == "" {
		return "", ""
	}

	parts := strings.Split(strings.ToUpper(projectName), "-")
	components := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			components = append(components, p)
		}
	}
	if len(components) == 0 {
		return resolve.NormalizeName(projectName), ""
	}

	for i := range components {
		components[i] = strings.TrimSpace(components[i])
	}

	// Split form: trailing digits preceded by a bare "ERGP" component.
	if len(components) >= 2 {
		last := components[len(components)-1]
		secondLast := components[len(components)-2]
		if digitsOnlyRe.MatchString(last) && secondLast == "ERGP" {
			code = secondLast + last
			components = components[:len(components)-2]
		}
	}

	// Joined form: single trailing "ERGP<digits>" component.
	if code == "" && len(components) > 0 {
		last := components[len(components)-1]
		if ergpCodeRe.MatchString(last) {
			code = last
			components = components[:len(components)-1]
		}
	}

	cleanedName = resolve.NormalizeName(strings.Join(components, " "))
	return cleanedName, code
}

package resolve

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// NameChange records a historical agency rename.
type NameChange struct {
	OldName       string `yaml:"old_name"`
	NewName       string `yaml:"new_name"`
	EffectiveDate string `yaml:"effective_date"`
}

// Rules holds the authored consolidation table: ministry-HQ code mappings
// and historical renames. The table is maintained data, loaded from
// configuration; DefaultRules carries the currently known entries.
type Rules struct {
	// HQConsolidation maps HQ sub-entity codes to their canonical code.
	HQConsolidation map[string]string `yaml:"hq_consolidation"`
	// NameChanges maps canonical codes to their rename history.
	NameChanges map[string]NameChange `yaml:"name_changes"`
}

// DefaultRules returns the compiled-in consolidation table.
func DefaultRules() *Rules {
	return &Rules{
		HQConsolidation: map[string]string{
			"255001001": "255001001", // Federal Ministry of Tourism
			"451001001": "451001001", // Federal Ministry of Regional Development
			"521001001": "521001001", // Federal Ministry of Health
		},
		NameChanges: map[string]NameChange{
			"451001001": {
				OldName:       "FEDERAL MINISTRY OF NIGER DELTA DEVELOPMENT",
				NewName:       "FEDERAL MINISTRY OF REGIONAL DEVELOPMENT",
				EffectiveDate: "2024-01-01",
			},
		},
	}
}

// LoadRules reads a consolidation table from a YAML file.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: read rules file %s", path)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "resolve: parse rules file %s", path)
	}
	if r.HQConsolidation == nil {
		r.HQConsolidation = map[string]string{}
	}
	if r.NameChanges == nil {
		r.NameChanges = map[string]NameChange{}
	}

	return &r, nil
}

// CanonicalCode returns the canonical agency code after HQ consolidation;
// identity when no rule matches.
func (r *Rules) CanonicalCode(code string) string {
	if canonical, ok := r.HQConsolidation[code]; ok {
		return canonical
	}
	return code
}

// CurrentName returns the post-rename display name for a code that underwent
// a historical rename, or "" meaning "use the entity's own name".
func (r *Rules) CurrentName(code string) string {
	if change, ok := r.NameChanges[code]; ok {
		return change.NewName
	}
	return ""
}

// IsHeadquarters reports whether the record is a ministry HQ: either its
// code is a known consolidation target, or its name carries an HQ suffix
// token.
func (r *Rules) IsHeadquarters(name, code string) bool {
	if code != "" {
		if _, ok := r.HQConsolidation[code]; ok {
			return true
		}
	}

	upper := strings.ToUpper(name)
	for _, suffix := range hqSuffixes {
		if strings.Contains(upper, suffix) {
			return true
		}
	}

	return false
}

package resolve

import (
	"github.com/govwatch/compliance-cli/internal/model"
)

// Default acceptance thresholds. The scoped threshold is lower because
// ministry context already bounds the candidate set, reducing the
// false-positive risk a global scan carries.
const (
	ScopedThreshold = 0.85
	GlobalThreshold = 0.90
)

// MatchKind identifies which rule produced a match. Recorded as provenance
// on every resolution for match-quality auditing.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExactCode
	MatchExactNameScoped
	MatchFuzzyScoped
	MatchExactGlobal
	MatchFuzzyGlobal
)

// String returns the audit label for the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExactCode:
		return "EXACT_AGENCY_CODE"
	case MatchExactNameScoped:
		return "EXACT_NAME_WITHIN_MINISTRY"
	case MatchFuzzyScoped:
		return "FUZZY_WITHIN_MINISTRY"
	case MatchExactGlobal:
		return "EXACT_NAME"
	case MatchFuzzyGlobal:
		return "FUZZY_GLOBAL"
	default:
		return "NO_MATCH"
	}
}

// Match is the outcome of one resolution attempt. Score is populated for
// the fuzzy kinds only.
type Match struct {
	Entity *model.Entity
	Kind   MatchKind
	Score  float64
}

// Matched reports whether the attempt resolved to an entity.
func (m Match) Matched() bool {
	return m.Kind != MatchNone && m.Entity != nil
}

// Matcher resolves free-text agency names and inconsistent codes against a
// Registry using a strict precedence ladder. Resolution is a pure read over
// the registry snapshot; a Matcher is safe for concurrent use.
type Matcher struct {
	reg *Registry

	// Thresholds are overridable for calibration runs; zero values fall
	// back to the package defaults.
	ScopedMin float64
	GlobalMin float64
}

// NewMatcher creates a matcher over the given registry with default
// thresholds.
func NewMatcher(reg *Registry) *Matcher {
	return &Matcher{reg: reg, ScopedMin: ScopedThreshold, GlobalMin: GlobalThreshold}
}

// Resolve finds the best registry entity for a raw agency name, optional
// agency code, and optional parent-ministry code. Rules fire in strict
// precedence order; the first hit wins:
//
//  1. exact agency-code match (skips everything else, however dissimilar
//     the supplied name)
//  2. exact normalized-name match within the ministry scope
//  3. fuzzy match within the ministry scope, score >= ScopedMin
//  4. exact normalized-name match globally
//  5. fuzzy match globally, score >= GlobalMin
//
// Ties at the same fuzzy score keep the first candidate in registry load
// order, which keeps results reproducible.
func (m *Matcher) Resolve(agencyName string, agencyCode, ministryCode any) Match {
	// 1. Exact code short-circuit.
	if code := NormalizeCode(agencyCode); code != "" {
		if e := m.reg.Lookup(code); e != nil {
			return Match{Entity: e, Kind: MatchExactCode}
		}
	}

	normalized := NormalizeName(agencyName)
	if normalized == "" {
		return Match{Kind: MatchNone}
	}

	// 2 + 3. Ministry-scoped matching.
	if minCode := NormalizeCode(ministryCode); minCode != "" {
		scoped := m.reg.ByMinistry(minCode)

		for _, e := range scoped {
			if e.AgencyNameNormalized == normalized {
				return Match{Entity: e, Kind: MatchExactNameScoped}
			}
		}

		if best, score := bestCandidate(normalized, scoped); best != nil && score >= m.scopedMin() {
			return Match{Entity: best, Kind: MatchFuzzyScoped, Score: score}
		}
	}

	// 4. Global exact.
	if e := m.reg.LookupName(normalized); e != nil {
		return Match{Entity: e, Kind: MatchExactGlobal}
	}

	// 5. Global fuzzy. O(n) over the active set; the dominant cost when
	// everything above misses.
	if best, score := bestCandidate(normalized, m.reg.Active()); best != nil && score >= m.globalMin() {
		return Match{Entity: best, Kind: MatchFuzzyGlobal, Score: score}
	}

	return Match{Kind: MatchNone}
}

// bestCandidate returns the highest-scoring candidate by normalized agency
// name. Strict greater-than keeps the earliest candidate on ties.
func bestCandidate(normalized string, candidates []*model.Entity) (*model.Entity, float64) {
	var best *model.Entity
	var bestScore float64

	for _, e := range candidates {
		score := Similarity(normalized, e.AgencyNameNormalized)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	return best, bestScore
}

func (m *Matcher) scopedMin() float64 {
	if m.ScopedMin > 0 {
		return m.ScopedMin
	}
	return ScopedThreshold
}

func (m *Matcher) globalMin() float64 {
	if m.GlobalMin > 0 {
		return m.GlobalMin
	}
	return GlobalThreshold
}

package survey

import (
	"go.uber.org/zap"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/resolve"
)

// LinkThreshold is the minimum similarity for a fuzzy name link. Survey MDA
// names are free text with no code to anchor on, so the bar sits higher than
// ministry-scoped budget matching.
const LinkThreshold = 0.90

// Linker resolves free-text MDA names from survey responses to registry
// entities.
type Linker struct {
	reg   *resolve.Registry
	rules *resolve.Rules
	min   float64
	log   *zap.Logger
}

// NewLinker creates a Linker over the given registry.
func NewLinker(reg *resolve.Registry, rules *resolve.Rules) *Linker {
	return &Linker{
		reg:   reg,
		rules: rules,
		min:   LinkThreshold,
		log:   zap.L().With(zap.String("component", "survey-linker")),
	}
}

// WithThreshold overrides the fuzzy-link threshold. Zero keeps the default.
func (l *Linker) WithThreshold(min float64) *Linker {
	if min > 0 {
		l.min = min
	}
	return l
}

// Link resolves each response's MDA name and writes the matched entity's
// agency code and ministry back onto the response in place. Responses with a
// blank MDA name and responses already linked are skipped. The returned
// report counts exact links, fuzzy links, and the unmatched remainder.
func (l *Linker) Link(responses []*model.SurveyResponse) model.LinkReport {
	var report model.LinkReport

	for _, resp := range responses {
		if resp.AgencyCode != "" || resp.MDAName == "" {
			continue
		}

		entity, exact := l.findByName(resp.MDAName)
		if entity == nil {
			report.Unmatched = append(report.Unmatched, model.UnlinkedResponse{
				PublicID: resp.PublicID,
				MDAName:  resp.MDAName,
				ERGPCode: resp.ERGPCode,
			})
			continue
		}

		resp.AgencyCode = l.rules.CanonicalCode(entity.AgencyCode)
		resp.ParentMinistry = entity.MinistryName
		if exact {
			report.Linked++
		} else {
			report.Fuzzy++
			l.log.Debug("fuzzy link",
				zap.String("mda_name", resp.MDAName),
				zap.String("agency_code", entity.AgencyCode))
		}
	}

	return report
}

// findByName matches a free-text MDA name against active registry entities:
// exact on the headquarters-normalized form first, then best fuzzy candidate
// at or above the threshold. The second return reports whether the match was
// exact.
func (l *Linker) findByName(name string) (*model.Entity, bool) {
	search := resolve.NormalizeMinistryName(name)
	if search == "" {
		return nil, false
	}

	var best *model.Entity
	var bestScore float64
	for _, e := range l.reg.Active() {
		candidate := resolve.NormalizeMinistryName(e.AgencyName)
		if candidate == search {
			return e, true
		}
		if score := resolve.Similarity(search, candidate); score >= l.min && score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best, false
}

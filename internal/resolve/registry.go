package resolve

import (
	"github.com/govwatch/compliance-cli/internal/model"
)

// Registry is the in-memory canonical reference of ministry/agency entities,
// indexed for the matcher's lookup paths. It is constructed once from the
// reference dataset and injected wherever resolution happens, so tests can
// build isolated instances.
type Registry struct {
	entities   []*model.Entity
	byCode     map[string]*model.Entity
	byName     map[string]*model.Entity   // normalized agency name -> first active entity
	byMinistry map[string][]*model.Entity // ministry code -> active entities, load order
}

// NewRegistry builds a registry from entity records. Normalized names are
// derived when absent, and self-accounting is detected where the agency name
// equals the ministry name. Iteration order follows input order, which keeps
// fuzzy tie-breaks deterministic.
func NewRegistry(entities []model.Entity) *Registry {
	r := &Registry{
		byCode:     make(map[string]*model.Entity, len(entities)),
		byName:     make(map[string]*model.Entity, len(entities)),
		byMinistry: make(map[string][]*model.Entity),
	}

	for i := range entities {
		e := entities[i]
		if e.AgencyNameNormalized == "" {
			e.AgencyNameNormalized = NormalizeName(e.AgencyName)
		}
		if e.MinistryNameNormalized == "" {
			e.MinistryNameNormalized = NormalizeName(e.MinistryName)
		}
		if e.AgencyName == e.MinistryName {
			e.IsSelfAccounting = true
		}

		ent := &e
		r.entities = append(r.entities, ent)

		if !e.IsActive {
			continue
		}
		if _, dup := r.byCode[e.AgencyCode]; !dup {
			r.byCode[e.AgencyCode] = ent
		}
		if _, dup := r.byName[e.AgencyNameNormalized]; !dup {
			r.byName[e.AgencyNameNormalized] = ent
		}
		r.byMinistry[e.MinistryCode] = append(r.byMinistry[e.MinistryCode], ent)
	}

	return r
}

// Lookup returns the active entity with the given agency code, or nil.
func (r *Registry) Lookup(code string) *model.Entity {
	return r.byCode[code]
}

// LookupName returns the active entity with the given normalized agency
// name, or nil.
func (r *Registry) LookupName(normalized string) *model.Entity {
	return r.byName[normalized]
}

// ByMinistry returns the active entities under a ministry code, in load
// order.
func (r *Registry) ByMinistry(ministryCode string) []*model.Entity {
	return r.byMinistry[ministryCode]
}

// Active returns all active entities in load order.
func (r *Registry) Active() []*model.Entity {
	out := make([]*model.Entity, 0, len(r.entities))
	for _, e := range r.entities {
		if e.IsActive {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the total number of loaded entities, active or not.
func (r *Registry) Len() int {
	return len(r.entities)
}

package ingest

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/resolve"
	"github.com/govwatch/compliance-cli/internal/tabular"
)

var entityColumnAliases = map[string][]string{
	"ministry_code": {"MINISTRY_CODE", "PARENT_MINISTRY_CODE"},
	"agency_code":   {"AGENCY_CODE", "MDA_CODE", "CODE"},
	"agency_name":   {"AGENCY_NAME", "AGENCY", "MDA", "MDA_NAME"},
	"ministry_name": {"MINISTRY_NAME", "MINISTRY", "PARENT_MINISTRY"},
	"fiscal_year":   {"FISCAL_YEAR", "YEAR"},
}

var entityRequired = []string{"agency_code", "agency_name", "ministry_name"}

// LoadEntities parses the canonical ministry/agency reference dataset. Rows
// missing a required field are dropped and counted. Self-accounting status is
// derived, not read: an agency whose normalized name equals its ministry's is
// the ministry itself.
func LoadEntities(path, fiscalYear string) ([]model.Entity, int, error) {
	table, err := tabular.ReadFile(path, tabular.Options{})
	if err != nil {
		return nil, 0, eris.Wrapf(err, "ingest: read registry %s", path)
	}
	return ParseEntities(table, fiscalYear)
}

// ParseEntities converts an already-parsed registry table into entities.
func ParseEntities(table *tabular.Table, fiscalYear string) ([]model.Entity, int, error) {
	idx := table.Index()
	cols := make(map[string]int, len(entityColumnAliases))
	for field, aliases := range entityColumnAliases {
		cols[field] = -1
		for _, alias := range aliases {
			if pos, ok := idx[alias]; ok {
				cols[field] = pos
				break
			}
		}
	}
	var missing []string
	for _, field := range entityRequired {
		if cols[field] < 0 {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, 0, eris.Errorf("ingest: registry columns not found: %s", strings.Join(missing, ", "))
	}

	cell := func(row int, field string) string {
		pos := cols[field]
		if pos < 0 {
			return ""
		}
		return strings.TrimSpace(table.Cell(row, pos))
	}

	now := time.Now().UTC()
	var entities []model.Entity
	dropped := 0
	for i := range table.Rows {
		code := resolve.NormalizeCode(cell(i, "agency_code"))
		name := cell(i, "agency_name")
		ministry := cell(i, "ministry_name")
		if code == "" || name == "" || ministry == "" {
			dropped++
			continue
		}

		year := cell(i, "fiscal_year")
		if year == "" {
			year = fiscalYear
		}

		// The stored normalized name keeps the plain form the matcher
		// compares against. The HQ-stripped form is used only to detect a
		// ministry's own HQ record as self-accounting.
		agencyNorm := resolve.NormalizeName(name)
		ministryNorm := resolve.NormalizeMinistryName(ministry)
		selfAccounting := resolve.NormalizeMinistryName(name) == ministryNorm

		entities = append(entities, model.Entity{
			MinistryCode:           resolve.NormalizeCode(cell(i, "ministry_code")),
			AgencyCode:             code,
			AgencyName:             name,
			MinistryName:           ministry,
			AgencyNameNormalized:   agencyNorm,
			MinistryNameNormalized: ministryNorm,
			IsSelfAccounting:       selfAccounting,
			IsParastatal:           !selfAccounting,
			IsActive:               true,
			FiscalYear:             year,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	}
	return entities, dropped, nil
}

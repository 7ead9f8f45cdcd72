package ingest

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/govwatch/compliance-cli/internal/tabular"
)

// Logical budget columns. Source workbooks come from several authoring
// pipelines with drifting header names, so each logical field carries a fixed
// alias list.
const (
	colCode          = "code"
	colProjectName   = "project_name"
	colStatusType    = "status_type"
	colAppropriation = "appropriation"
	colMinistry      = "ministry"
	colAgency        = "agency"
	colAgencyCode    = "agency_code"
	colMinistryCode  = "ministry_code"
)

var columnAliases = map[string][]string{
	colCode:          {"ERGP_CODE", "CODE", "PROJECT_CODE"},
	colProjectName:   {"PROJECT_NAME", "PROJECT", "DESCRIPTION"},
	colStatusType:    {"STATUS", "STATUS_TYPE", "TYPE"},
	colAppropriation: {"APPROPRIATION", "AMOUNT", "BUDGET", "ALLOCATED_AMOUNT"},
	colMinistry:      {"MINISTRY", "MINISTRY_NAME", "PARENT_MINISTRY"},
	colAgency:        {"AGENCY", "AGENCY_NAME", "MDA", "IMPLEMENTING_AGENCY"},
	colAgencyCode:    {"AGENCY_CODE", "MDA_CODE", "IMPLEMENTING_AGENCY_CODE"},
	colMinistryCode:  {"MINISTRY_CODE", "PARENT_MINISTRY_CODE"},
}

// requiredColumns must resolve for ingestion to proceed at all.
var requiredColumns = []string{colCode, colAgency, colAppropriation}

// resolveColumns maps logical fields to column positions via the alias
// table. A missing optional column maps to -1; a missing required column
// aborts.
func resolveColumns(t *tabular.Table) (map[string]int, error) {
	idx := t.Index()

	cols := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		cols[field] = -1
		for _, alias := range aliases {
			if pos, ok := idx[alias]; ok {
				cols[field] = pos
				break
			}
		}
	}

	var missing []string
	for _, field := range requiredColumns {
		if cols[field] < 0 {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("ingest: required columns not found: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/govwatch/compliance-cli/internal/model"
)

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "compliance.xlsx")
	report := &Report{
		Overview: model.Overview{
			TotalBudgetProjects: 4,
			ReportedProjects:    1,
			UnreportedProjects:  3,
			ReportedPct:         25,
			UnreportedPct:       75,
		},
		Entities: []model.ComplianceRecord{{
			AgencyCode:        "215001001",
			DisplayName:       "FEDERAL MINISTRY OF HEALTH",
			ParentMinistry:    "FEDERAL MINISTRY OF HEALTH",
			ExpectedProjects:  2,
			ReportedProjects:  1,
			TotalSubmissions:  3,
			ComplianceRatePct: 50,
			IsMinistryHQ:      true,
		}},
		Ministries: []model.MinistryCompliance{{
			MinistryName:      "FEDERAL MINISTRY OF HEALTH",
			AgencyCount:       2,
			ExpectedProjects:  100,
			ReportedProjects:  10,
			ComplianceRatePct: 10,
		}},
		Rows: []model.PerformanceRow{{
			ComplianceRecord: model.ComplianceRecord{
				AgencyCode:        "215001001",
				DisplayName:       "FEDERAL MINISTRY OF HEALTH",
				ComplianceRatePct: 50,
			},
			PerformanceIndex: 42.5,
		}},
		Flags: []model.QualityFlags{{
			AgencyCode:      "215001001",
			DisplayName:     "FEDERAL MINISTRY OF HEALTH",
			Responses:       3,
			MissingERGPCode: 1,
		}},
		Unmatched: []model.UnmatchedBudgetRecord{{
			ProjectCode:  "ERGP0009",
			AgencyName:   "UNKNOWN PARASTATAL",
			MinistryName: "FEDERAL MINISTRY OF HEALTH",
		}},
	}

	require.NoError(t, WriteWorkbook(path, report))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	names := make([]string, 0, len(file.Sheets))
	for _, s := range file.Sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		"Overview", "Entity Compliance", "Ministry Rollup",
		"Performance", "Quality Flags", "Unmatched Budget",
	}, names)

	entity := file.Sheet["Entity Compliance"]
	require.NotNil(t, entity)
	require.Len(t, entity.Rows, 2)
	assert.Equal(t, "215001001", entity.Rows[1].Cells[0].String())
	assert.Equal(t, "FEDERAL MINISTRY OF HEALTH", entity.Rows[1].Cells[1].String())
	expected, err := entity.Rows[1].Cells[3].Int()
	require.NoError(t, err)
	assert.Equal(t, 2, expected)
	rate, err := entity.Rows[1].Cells[6].Float()
	require.NoError(t, err)
	assert.Equal(t, 50.0, rate)

	unmatched := file.Sheet["Unmatched Budget"]
	require.NotNil(t, unmatched)
	require.Len(t, unmatched.Rows, 2)
	assert.Equal(t, "ERGP0009", unmatched.Rows[1].Cells[0].String())
}

func TestWriteWorkbook_EmptyReport(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path, &Report{}))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 6)
	// Header rows only
	assert.Len(t, file.Sheets[1].Rows, 1)
}

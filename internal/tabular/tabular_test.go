package tabular

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"ERGP_CODE, AGENCY ,APPROPRIATION",
		"ERGP20250001,FEDERAL MINISTRY OF HEALTH,500000",
		`ERGP20250002,"NATIONAL AGENCY, SOMETHING",250000`,
	}, "\n")

	table, err := ReadCSV(strings.NewReader(input), Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"ERGP_CODE", "AGENCY", "APPROPRIATION"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "NATIONAL AGENCY, SOMETHING", table.Rows[1][1])
}

func TestReadCSV_RaggedRows(t *testing.T) {
	t.Parallel()

	input := "A,B,C\n1,2\n4,5,6,7\n"
	table, err := ReadCSV(strings.NewReader(input), Options{})

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader(""), Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := ReadFile("budget.pdf", Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := writeTestXLSX(t)

	table, err := ReadXLSX(path, Options{})

	require.NoError(t, err)
	assert.Equal(t, []string{"CODE", "AGENCY"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "ERGP20250001", table.Rows[0][0])
}

func TestReadXLSX_SheetNotFound(t *testing.T) {
	t.Parallel()

	path := writeTestXLSX(t)

	_, err := ReadXLSX(path, Options{SheetName: "MISSING"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestIndex(t *testing.T) {
	t.Parallel()

	table := &Table{Header: []string{" ergp_code ", "AGENCY", "", "AGENCY"}}
	idx := table.Index()

	assert.Equal(t, 0, idx["ERGP_CODE"])
	assert.Equal(t, 1, idx["AGENCY"], "first duplicate wins")
	assert.Len(t, idx, 2)
}

func TestCell_RaggedRow(t *testing.T) {
	t.Parallel()

	table := &Table{Rows: [][]string{{"a", "b"}}}

	assert.Equal(t, "b", table.Cell(0, 1))
	assert.Empty(t, table.Cell(0, 5))
	assert.Empty(t, table.Cell(0, -1))
	assert.Empty(t, table.Cell(7, 0))
	assert.Empty(t, table.Cell(-1, 0))
}

func writeTestXLSX(t *testing.T) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Budget")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().SetString("CODE")
	header.AddCell().SetString("AGENCY")

	row := sheet.AddRow()
	row.AddCell().SetString("ERGP20250001")
	row.AddCell().SetString("FEDERAL MINISTRY OF HEALTH")

	path := filepath.Join(t.TempDir(), "budget.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_CanonicalCode(t *testing.T) {
	r := &Rules{HQConsolidation: map[string]string{"100001002": "100001001"}}

	assert.Equal(t, "100001001", r.CanonicalCode("100001002"))
	assert.Equal(t, "999999999", r.CanonicalCode("999999999")) // identity when unmapped
}

func TestRules_CurrentName(t *testing.T) {
	r := DefaultRules()

	assert.Equal(t, "FEDERAL MINISTRY OF REGIONAL DEVELOPMENT", r.CurrentName("451001001"))
	assert.Equal(t, "", r.CurrentName("215001001"))
}

func TestRules_IsHeadquarters(t *testing.T) {
	r := DefaultRules()

	assert.True(t, r.IsHeadquarters("FEDERAL MINISTRY OF HEALTH", "521001001"))
	assert.True(t, r.IsHeadquarters("Federal Ministry of Agriculture - HQTRS", ""))
	assert.True(t, r.IsHeadquarters("ministry of power headquarters", ""))
	assert.False(t, r.IsHeadquarters("NATIONAL BUREAU OF STATISTICS", "999999999"))
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
hq_consolidation:
  "100001002": "100001001"
name_changes:
  "100001001":
    old_name: OLD MINISTRY
    new_name: NEW MINISTRY
    effective_date: "2024-01-01"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "100001001", r.CanonicalCode("100001002"))
	assert.Equal(t, "NEW MINISTRY", r.CurrentName("100001001"))
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

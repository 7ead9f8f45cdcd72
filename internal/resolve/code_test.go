package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode_Determinism(t *testing.T) {
	// Every representation of the same code collapses to one form.
	assert.Equal(t, "215001", NormalizeCode("000215001"))
	assert.Equal(t, "215001", NormalizeCode(215001.0))
	assert.Equal(t, "215001", NormalizeCode("215001"))
	assert.Equal(t, "215001", NormalizeCode("215001.0"))
	assert.Equal(t, "215001", NormalizeCode(215001))
}

func TestNormalizeCode_StripsNonDigits(t *testing.T) {
	assert.Equal(t, "215001001", NormalizeCode("215-001-001"))
	assert.Equal(t, "215001001", NormalizeCode(" 215001001 "))
}

func TestNormalizeCode_Empty(t *testing.T) {
	assert.Equal(t, "", NormalizeCode(""))
	assert.Equal(t, "", NormalizeCode(nil))
	assert.Equal(t, "", NormalizeCode("N/A"))
	assert.Equal(t, "", NormalizeCode("0000"))
}

func TestEntityKey_PrefersCode(t *testing.T) {
	assert.Equal(t, "CODE_215001001", EntityKey("0215001001", "Federal Ministry of Health"))
}

func TestEntityKey_FallsBackToName(t *testing.T) {
	assert.Equal(t, "NAME_FEDERAL MINISTRY OF HEALTH", EntityKey("", "Federal Ministry of Health"))
	assert.Equal(t, "NAME_FEDERAL MINISTRY OF HEALTH", EntityKey(nil, "federal ministry of health"))
}

func TestEntityKey_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", EntityKey("", "  "))
}

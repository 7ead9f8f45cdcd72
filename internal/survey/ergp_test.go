package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractProjectCode_JoinedForm(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("CONSTRUCTION OF RURAL ROADS - ERGP20250001")

	assert.Equal(t, "CONSTRUCTION OF RURAL ROADS", name)
	assert.Equal(t, "ERGP20250001", code)
}

func TestExtractProjectCode_SplitForm(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("SUPPLY OF MEDICAL EQUIPMENT - ERGP - 20250042")

	assert.Equal(t, "SUPPLY OF MEDICAL EQUIPMENT", name)
	assert.Equal(t, "ERGP20250042", code)
}

func TestExtractProjectCode_NoCode(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("WATER SUPPLY SCHEME")

	assert.Equal(t, "WATER SUPPLY SCHEME", name)
	assert.Empty(t, code)
}

func TestExtractProjectCode_UppercasesInput(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("construction of clinic - ergp20250009")

	assert.Equal(t, "CONSTRUCTION OF CLINIC", name)
	assert.Equal(t, "ERGP20250009", code)
}

func TestExtractProjectCode_HyphensInsideName(t *testing.T) {
	t.Parallel()

	// Hyphens are a name separator only when a code trails; otherwise the
	// components rejoin as words.
	name, code := ExtractProjectCode("ABUJA-KADUNA ROAD REHABILITATION")

	assert.Equal(t, "ABUJA KADUNA ROAD REHABILITATION", name)
	assert.Empty(t, code)
}

func TestExtractProjectCode_CodeOnly(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("ERGP20250001")

	assert.Empty(t, name)
	assert.Equal(t, "ERGP20250001", code)
}

func TestExtractProjectCode_Blank(t *testing.T) {
	t.Parallel()

	name, code := ExtractProjectCode("   ")

	assert.Empty(t, name)
	assert.Empty(t, code)
}

func TestExtractProjectCode_BareERGPWithoutDigits(t *testing.T) {
	t.Parallel()

	// A trailing "ERGP" with no digit component is part of the name, not a
	// code.
	name, code := ExtractProjectCode("FEASIBILITY STUDY - ERGP")

	assert.Equal(t, "FEASIBILITY STUDY ERGP", name)
	assert.Empty(t, code)
}

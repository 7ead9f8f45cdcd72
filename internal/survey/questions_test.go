package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuestion_Aliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Project Stautus", "Project Status"},
		{"STATE?", "STATE"},
		{"LGA?", "LGA"},
		{"WARD?", "WARD"},
		{"PROJECT APPROPRIATION 2024", "PROJECT APPROPRIATION"},
		{"AMOUNT RELEASED 2024", "AMOUNT RELEASED"},
		{"AMOUNT UTILIZED 2024", "AMOUNT UTILIZED"},
		{"Project Execution", "PROJECT EXECUTION"},
		{"PROJECT APPROPRIATION", "PROJECT APPROPRIATION"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuestion(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeQuestion_CaseInsensitiveFallback(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "STATE", NormalizeQuestion("state?"))
	assert.Equal(t, "AMOUNT RELEASED", NormalizeQuestion("amount released 2024"))
}

func TestNormalizeQuestion_UnknownPassesThrough(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "HOW MANY BOREHOLES", NormalizeQuestion("HOW MANY BOREHOLES"))
	assert.Equal(t, "", NormalizeQuestion(""))
}

func TestFieldForQuestion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FieldProjectStatus, fieldForQuestion("Project Stautus"))
	assert.Equal(t, FieldAppropriation, fieldForQuestion("PROJECT APPROPRIATION 2024"))
	assert.Equal(t, FieldMDAName, fieldForQuestion("Name of MDA"))
	assert.Equal(t, FieldState, fieldForQuestion("STATE?"))
	assert.Empty(t, fieldForQuestion("UNRELATED QUESTION"))
}

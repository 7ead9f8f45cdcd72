package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/internal/resolve"
)

func linkRegistry() *resolve.Registry {
	return resolve.NewRegistry([]model.Entity{
		{
			MinistryCode: "215",
			MinistryName: "FEDERAL MINISTRY OF HEALTH",
			AgencyCode:   "215001001",
			AgencyName:   "FEDERAL MINISTRY OF HEALTH",
			IsActive:     true,
		},
		{
			MinistryCode: "215",
			MinistryName: "FEDERAL MINISTRY OF HEALTH",
			AgencyCode:   "215002001",
			AgencyName:   "NATIONAL PRIMARY HEALTH CARE DEVELOPMENT AGENCY",
			IsActive:     true,
		},
		{
			MinistryCode: "451",
			MinistryName: "FEDERAL MINISTRY OF REGIONAL DEVELOPMENT",
			AgencyCode:   "451001001",
			AgencyName:   "FEDERAL MINISTRY OF REGIONAL DEVELOPMENT",
			IsActive:     true,
		},
	})
}

func newTestLinker() *Linker {
	return NewLinker(linkRegistry(), resolve.DefaultRules())
}

func TestLink_ExactAfterHQNormalization(t *testing.T) {
	t.Parallel()

	responses := []*model.SurveyResponse{
		{PublicID: "r1", MDAName: "Federal Ministry of Health - HQTRS"},
	}

	report := newTestLinker().Link(responses)

	assert.Equal(t, 1, report.Linked)
	assert.Zero(t, report.Fuzzy)
	assert.Empty(t, report.Unmatched)
	assert.Equal(t, "215001001", responses[0].AgencyCode)
	assert.Equal(t, "FEDERAL MINISTRY OF HEALTH", responses[0].ParentMinistry)
}

func TestLink_FuzzyAboveThreshold(t *testing.T) {
	t.Parallel()

	responses := []*model.SurveyResponse{
		{PublicID: "r2", MDAName: "FEDERAL MINISTRY OF HEALT"}, // dropped trailing H
	}

	report := newTestLinker().Link(responses)

	assert.Zero(t, report.Linked)
	assert.Equal(t, 1, report.Fuzzy)
	assert.Equal(t, "215001001", responses[0].AgencyCode)
}

func TestLink_UnmatchedBelowThreshold(t *testing.T) {
	t.Parallel()

	responses := []*model.SurveyResponse{
		{PublicID: "r3", MDAName: "RANDOM VENDOR NIGERIA LTD", ERGPCode: "ERGP20250099"},
	}

	report := newTestLinker().Link(responses)

	assert.Zero(t, report.Linked)
	assert.Zero(t, report.Fuzzy)
	require.Len(t, report.Unmatched, 1)
	assert.Equal(t, "r3", report.Unmatched[0].PublicID)
	assert.Equal(t, "ERGP20250099", report.Unmatched[0].ERGPCode)
	assert.Empty(t, responses[0].AgencyCode)
}

func TestLink_AppliesConsolidation(t *testing.T) {
	t.Parallel()

	rules := &resolve.Rules{
		HQConsolidation: map[string]string{"215001001": "215000001"},
	}
	linker := NewLinker(linkRegistry(), rules)

	responses := []*model.SurveyResponse{
		{PublicID: "r4", MDAName: "FEDERAL MINISTRY OF HEALTH"},
	}

	linker.Link(responses)

	assert.Equal(t, "215000001", responses[0].AgencyCode)
}

func TestLink_SkipsLinkedAndBlank(t *testing.T) {
	t.Parallel()

	responses := []*model.SurveyResponse{
		{PublicID: "r5", MDAName: "FEDERAL MINISTRY OF HEALTH", AgencyCode: "999999999"},
		{PublicID: "r6", MDAName: ""},
	}

	report := newTestLinker().Link(responses)

	assert.Zero(t, report.Linked)
	assert.Zero(t, report.Fuzzy)
	assert.Empty(t, report.Unmatched)
	assert.Equal(t, "999999999", responses[0].AgencyCode, "already-linked response untouched")
}

func TestFindByName_PrefersExactOverFuzzy(t *testing.T) {
	t.Parallel()

	linker := newTestLinker()

	entity, exact := linker.findByName("NATIONAL PRIMARY HEALTH CARE DEVELOPMENT AGENCY")

	require.NotNil(t, entity)
	assert.True(t, exact)
	assert.Equal(t, "215002001", entity.AgencyCode)
}

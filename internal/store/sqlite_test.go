package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govwatch/compliance-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testEntities() []model.Entity {
	return []model.Entity{
		{
			MinistryCode:     "215",
			MinistryName:     "FEDERAL MINISTRY OF HEALTH",
			AgencyCode:       "215001001",
			AgencyName:       "FEDERAL MINISTRY OF HEALTH",
			IsSelfAccounting: true,
			IsActive:         true,
			FiscalYear:       "2025",
		},
		{
			MinistryCode: "215",
			MinistryName: "FEDERAL MINISTRY OF HEALTH",
			AgencyCode:   "215002001",
			AgencyName:   "NATIONAL PRIMARY HEALTH CARE DEVELOPMENT AGENCY",
			IsActive:     true,
			FiscalYear:   "2025",
		},
	}
}

func TestSQLite_ReplaceAndListEntities(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.ReplaceEntities(ctx, testEntities())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListEntities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "215001001", got[0].AgencyCode)
	assert.True(t, got[0].IsSelfAccounting)
	assert.Equal(t, "2025", got[1].FiscalYear)
}

func TestSQLite_ReplaceEntities_IsWholesale(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.ReplaceEntities(ctx, testEntities())
	require.NoError(t, err)

	n, err := st.ReplaceEntities(ctx, testEntities()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.ListEntities(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLite_ReplaceAndListBudgetProjects(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	projects := []model.BudgetProject{
		{
			ProjectCode:      "ERGP20250001",
			ProjectName:      "CONSTRUCTION OF PRIMARY HEALTH CENTRE",
			Appropriation:    800,
			MinistryCode:     "215",
			AgencyCode:       "215001001",
			AgencyName:       "FEDERAL MINISTRY OF HEALTH",
			AgencyNormalized: "FEDERAL MINISTRY OF HEALTH",
		},
		{
			ProjectCode:      "ERGP20250002",
			Appropriation:    250,
			AgencyName:       "UNKNOWN VENDOR",
			AgencyNormalized: "UNKNOWN VENDOR",
		},
	}

	n, err := st.ReplaceBudgetProjects(ctx, projects)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := st.ListBudgetProjects(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 800, got[0].Appropriation, 0.001)
	assert.Empty(t, got[1].AgencyCode, "unmatched project keeps empty code")

	// Second load replaces the first in full.
	n, err = st.ReplaceBudgetProjects(ctx, projects[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = st.ListBudgetProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLite_UpsertSurveyResponses(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	appropriation := 500000.0
	resp := model.SurveyResponse{
		PublicID:      "resp-001",
		SurveyType:    "survey1",
		MDAName:       "FEDERAL MINISTRY OF HEALTH",
		ERGPCode:      "ERGP20250001",
		ProjectStatus: "Ongoing",
		Appropriation: &appropriation,
		HasPictures:   true,
		Created:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}

	n, err := st.UpsertSurveyResponses(ctx, []model.SurveyResponse{resp})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Re-fetch with a changed status updates in place.
	resp.ProjectStatus = "Completed"
	_, err = st.UpsertSurveyResponses(ctx, []model.SurveyResponse{resp})
	require.NoError(t, err)

	got, err := st.ListSurveyResponses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Completed", got[0].ProjectStatus)
	require.NotNil(t, got[0].Appropriation)
	assert.InDelta(t, 500000, *got[0].Appropriation, 0.001)
	assert.Nil(t, got[0].AmountReleased)
	assert.True(t, got[0].HasPictures)
}

func TestSQLite_UpsertPreservesLink(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	resp := model.SurveyResponse{PublicID: "resp-002", SurveyType: "survey1", MDAName: "FMOH"}
	_, err := st.UpsertSurveyResponses(ctx, []model.SurveyResponse{resp})
	require.NoError(t, err)

	require.NoError(t, st.LinkSurveyResponse(ctx, "resp-002", "215001001", "FEDERAL MINISTRY OF HEALTH"))

	// A later fetch of the same response must not clear the link.
	_, err = st.UpsertSurveyResponses(ctx, []model.SurveyResponse{resp})
	require.NoError(t, err)

	got, err := st.ListSurveyResponses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "215001001", got[0].AgencyCode)
	assert.Equal(t, "FEDERAL MINISTRY OF HEALTH", got[0].ParentMinistry)
}

func TestSQLite_LinkSurveyResponse_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.LinkSurveyResponse(context.Background(), "missing", "215001001", "FMOH")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_IngestionRunLog(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	last, err := st.LastIngestion(ctx)
	require.NoError(t, err)
	assert.Nil(t, last, "empty log yields nil")

	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	run := &model.IngestionRun{
		ID:         "run-1",
		SourcePath: "/data/budget_2025.xlsx",
		Status:     model.IngestionRunning,
		StartedAt:  started,
	}
	require.NoError(t, st.RecordIngestion(ctx, run))

	finished := started.Add(2 * time.Minute)
	run.Status = model.IngestionComplete
	run.FinishedAt = &finished
	run.Report = &model.IngestionReport{
		RowsRead:    120,
		RowsStored:  115,
		MatchCounts: map[string]int{"EXACT_AGENCY_CODE": 100},
	}
	require.NoError(t, st.RecordIngestion(ctx, run))

	last, err = st.LastIngestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-1", last.ID)
	assert.Equal(t, model.IngestionComplete, last.Status)
	require.NotNil(t, last.Report)
	assert.Equal(t, 120, last.Report.RowsRead)
	assert.Equal(t, 100, last.Report.MatchCounts["EXACT_AGENCY_CODE"])
	require.NotNil(t, last.FinishedAt)
}

func TestSQLite_LastIngestion_ReturnsNewest(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	older := &model.IngestionRun{
		ID: "run-old", SourcePath: "a.csv", Status: model.IngestionComplete,
		StartedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &model.IngestionRun{
		ID: "run-new", SourcePath: "b.csv", Status: model.IngestionFailed,
		Error:     "header row missing required columns",
		StartedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.RecordIngestion(ctx, older))
	require.NoError(t, st.RecordIngestion(ctx, newer))

	last, err := st.LastIngestion(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "run-new", last.ID)
	assert.Equal(t, model.IngestionFailed, last.Status)
	assert.Contains(t, last.Error, "header row")
}

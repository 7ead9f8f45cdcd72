package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govwatch/compliance-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_ReplaceBudgetProjects(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "budget_projects"`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCopyFrom(pgx.Identifier{"budget_projects"}, budgetColumns).
		WillReturnResult(2)
	mock.ExpectCommit()

	n, err := s.ReplaceBudgetProjects(context.Background(), []model.BudgetProject{
		{ProjectCode: "ERGP20250001", AgencyCode: "215001001", Appropriation: 800},
		{ProjectCode: "ERGP20250002", AgencyNormalized: "UNKNOWN VENDOR", Appropriation: 250},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceEntities_ClearFails(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "entities"`).
		WillReturnError(pgx.ErrTxClosed)
	mock.ExpectRollback()

	_, err := s.ReplaceEntities(context.Background(), []model.Entity{{AgencyCode: "215001001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replace entities")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LinkSurveyResponse_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE survey_responses SET agency_code = \$1, parent_ministry = \$2 WHERE public_id = \$3`).
		WithArgs("215001001", "FEDERAL MINISTRY OF HEALTH", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.LinkSurveyResponse(context.Background(), "missing", "215001001", "FEDERAL MINISTRY OF HEALTH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastIngestion_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source_path, status, report, error, started_at, finished_at`).
		WillReturnError(pgx.ErrNoRows)

	run, err := s.LastIngestion(context.Background())
	require.NoError(t, err)
	assert.Nil(t, run)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastIngestion_WithReport(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)
	mock.ExpectQuery(`SELECT id, source_path, status, report, error, started_at, finished_at`).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source_path", "status", "report", "error", "started_at", "finished_at",
		}).AddRow(
			"run-1", "/data/budget.xlsx", "complete",
			[]byte(`{"rows_read":10,"rows_stored":9,"match_counts":{"EXACT_AGENCY_CODE":8}}`),
			"", started, &finished,
		))

	run, err := s.LastIngestion(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, model.IngestionComplete, run.Status)
	require.NotNil(t, run.Report)
	assert.Equal(t, 10, run.Report.RowsRead)
	assert.Equal(t, 8, run.Report.MatchCounts["EXACT_AGENCY_CODE"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecordIngestion(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	run := &model.IngestionRun{
		ID:         "run-1",
		SourcePath: "/data/budget.xlsx",
		Status:     model.IngestionRunning,
		StartedAt:  time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO ingestion_runs`).
		WithArgs("run-1", "/data/budget.xlsx", "running", pgxmock.AnyArg(), "",
			run.StartedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.RecordIngestion(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertSurveyResponses_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.UpsertSurveyResponses(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/govwatch/compliance-cli/internal/db"
	"github.com/govwatch/compliance-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS entities (
	agency_code              TEXT PRIMARY KEY,
	ministry_code            TEXT NOT NULL,
	agency_name              TEXT NOT NULL,
	ministry_name            TEXT NOT NULL DEFAULT '',
	agency_name_normalized   TEXT NOT NULL DEFAULT '',
	ministry_name_normalized TEXT NOT NULL DEFAULT '',
	is_self_accounting       BOOLEAN NOT NULL DEFAULT false,
	is_parastatal            BOOLEAN NOT NULL DEFAULT false,
	is_active                BOOLEAN NOT NULL DEFAULT true,
	fiscal_year              TEXT NOT NULL DEFAULT '',
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS budget_projects (
	project_code      TEXT NOT NULL,
	project_name      TEXT NOT NULL DEFAULT '',
	status_type       TEXT NOT NULL DEFAULT '',
	appropriation     DOUBLE PRECISION NOT NULL DEFAULT 0,
	ministry_code     TEXT NOT NULL DEFAULT '',
	ministry_name     TEXT NOT NULL DEFAULT '',
	agency_code       TEXT NOT NULL DEFAULT '',
	agency_name       TEXT NOT NULL DEFAULT '',
	agency_normalized TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS survey_responses (
	public_id            TEXT PRIMARY KEY,
	survey_type          TEXT NOT NULL,
	mda_name             TEXT NOT NULL DEFAULT '',
	parent_ministry      TEXT NOT NULL DEFAULT '',
	project_name         TEXT NOT NULL DEFAULT '',
	ergp_code            TEXT NOT NULL DEFAULT '',
	project_status       TEXT NOT NULL DEFAULT '',
	appropriation        DOUBLE PRECISION,
	amount_released      DOUBLE PRECISION,
	amount_utilized      DOUBLE PRECISION,
	pct_completed        DOUBLE PRECISION,
	state                TEXT NOT NULL DEFAULT '',
	lga                  TEXT NOT NULL DEFAULT '',
	ward                 TEXT NOT NULL DEFAULT '',
	has_pictures         BOOLEAN NOT NULL DEFAULT false,
	has_geolocation      BOOLEAN NOT NULL DEFAULT false,
	has_documents        BOOLEAN NOT NULL DEFAULT false,
	is_draft             BOOLEAN NOT NULL DEFAULT false,
	has_submitted_report BOOLEAN NOT NULL DEFAULT false,
	agency_code          TEXT NOT NULL DEFAULT '',
	created              TIMESTAMPTZ,
	updated              TIMESTAMPTZ,
	fetched_at           TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS ingestion_runs (
	id          TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	status      TEXT NOT NULL,
	report      JSONB,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_identity
	ON budget_projects(project_code, agency_code, agency_normalized);
CREATE INDEX IF NOT EXISTS idx_budget_agency_code ON budget_projects(agency_code);
CREATE INDEX IF NOT EXISTS idx_entities_ministry ON entities(ministry_code);
CREATE INDEX IF NOT EXISTS idx_responses_agency_code ON survey_responses(agency_code);
CREATE INDEX IF NOT EXISTS idx_responses_ergp ON survey_responses(ergp_code);
CREATE INDEX IF NOT EXISTS idx_ingestion_started ON ingestion_runs(started_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var entityColumns = []string{
	"agency_code", "ministry_code", "agency_name", "ministry_name",
	"agency_name_normalized", "ministry_name_normalized",
	"is_self_accounting", "is_parastatal", "is_active", "fiscal_year",
	"created_at", "updated_at",
}

func (s *PostgresStore) ReplaceEntities(ctx context.Context, entities []model.Entity) (int, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(entities))
	for _, e := range entities {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		rows = append(rows, []any{
			e.AgencyCode, e.MinistryCode, e.AgencyName, e.MinistryName,
			e.AgencyNameNormalized, e.MinistryNameNormalized,
			e.IsSelfAccounting, e.IsParastatal, e.IsActive, e.FiscalYear,
			createdAt, now,
		})
	}

	n, err := db.ReplaceAll(ctx, s.pool, "entities", entityColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace entities")
	}
	return int(n), nil
}

func (s *PostgresStore) ListEntities(ctx context.Context) ([]model.Entity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT agency_code, ministry_code, agency_name, ministry_name,
		       agency_name_normalized, ministry_name_normalized,
		       is_self_accounting, is_parastatal, is_active, fiscal_year,
		       created_at, updated_at
		FROM entities ORDER BY ctid`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list entities")
	}
	defer rows.Close()

	var entities []model.Entity
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(
			&e.AgencyCode, &e.MinistryCode, &e.AgencyName, &e.MinistryName,
			&e.AgencyNameNormalized, &e.MinistryNameNormalized,
			&e.IsSelfAccounting, &e.IsParastatal, &e.IsActive, &e.FiscalYear,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entity")
		}
		entities = append(entities, e)
	}
	return entities, eris.Wrap(rows.Err(), "postgres: list entities iterate")
}

var budgetColumns = []string{
	"project_code", "project_name", "status_type", "appropriation",
	"ministry_code", "ministry_name", "agency_code", "agency_name", "agency_normalized",
}

func (s *PostgresStore) ReplaceBudgetProjects(ctx context.Context, projects []model.BudgetProject) (int, error) {
	rows := make([][]any, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []any{
			p.ProjectCode, p.ProjectName, p.StatusType, p.Appropriation,
			p.MinistryCode, p.MinistryName, p.AgencyCode, p.AgencyName, p.AgencyNormalized,
		})
	}

	n, err := db.ReplaceAll(ctx, s.pool, "budget_projects", budgetColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: replace budget projects")
	}
	return int(n), nil
}

func (s *PostgresStore) ListBudgetProjects(ctx context.Context) ([]model.BudgetProject, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT project_code, project_name, status_type, appropriation,
		       ministry_code, ministry_name, agency_code, agency_name, agency_normalized
		FROM budget_projects ORDER BY ctid`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list budget projects")
	}
	defer rows.Close()

	var projects []model.BudgetProject
	for rows.Next() {
		var p model.BudgetProject
		if err := rows.Scan(
			&p.ProjectCode, &p.ProjectName, &p.StatusType, &p.Appropriation,
			&p.MinistryCode, &p.MinistryName, &p.AgencyCode, &p.AgencyName, &p.AgencyNormalized,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan budget project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: list budget projects iterate")
}

var responseColumns = []string{
	"public_id", "survey_type", "mda_name", "parent_ministry", "project_name",
	"ergp_code", "project_status", "appropriation", "amount_released",
	"amount_utilized", "pct_completed", "state", "lga", "ward",
	"has_pictures", "has_geolocation", "has_documents",
	"is_draft", "has_submitted_report", "agency_code", "created", "updated", "fetched_at",
}

func (s *PostgresStore) UpsertSurveyResponses(ctx context.Context, responses []model.SurveyResponse) (int, error) {
	rows := make([][]any, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, []any{
			r.PublicID, r.SurveyType, r.MDAName, r.ParentMinistry, r.ProjectName,
			r.ERGPCode, r.ProjectStatus, r.Appropriation, r.AmountReleased,
			r.AmountUtilized, r.PctCompleted, r.State, r.LGA, r.Ward,
			r.HasPictures, r.HasGeolocation, r.HasDocuments,
			r.IsDraft, r.HasSubmittedReport, r.AgencyCode,
			pgTime(r.Created), pgTime(r.Updated), pgTime(r.FetchedAt),
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "survey_responses",
		Columns:      responseColumns,
		ConflictKeys: []string{"public_id"},
		// agency_code and parent_ministry survive re-fetch; linking owns them.
		UpdateCols: []string{
			"survey_type", "mda_name", "project_name", "ergp_code",
			"project_status", "appropriation", "amount_released",
			"amount_utilized", "pct_completed", "state", "lga", "ward",
			"has_pictures", "has_geolocation", "has_documents",
			"is_draft", "has_submitted_report", "updated", "fetched_at",
		},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert survey responses")
	}
	return int(n), nil
}

func (s *PostgresStore) ListSurveyResponses(ctx context.Context) ([]model.SurveyResponse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT public_id, survey_type, mda_name, parent_ministry, project_name,
		       ergp_code, project_status, appropriation, amount_released,
		       amount_utilized, pct_completed, state, lga, ward,
		       has_pictures, has_geolocation, has_documents,
		       is_draft, has_submitted_report, agency_code, created, updated, fetched_at
		FROM survey_responses ORDER BY created`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list responses")
	}
	defer rows.Close()

	var responses []model.SurveyResponse
	for rows.Next() {
		var r model.SurveyResponse
		var created, updated, fetched *time.Time
		if err := rows.Scan(
			&r.PublicID, &r.SurveyType, &r.MDAName, &r.ParentMinistry, &r.ProjectName,
			&r.ERGPCode, &r.ProjectStatus, &r.Appropriation, &r.AmountReleased,
			&r.AmountUtilized, &r.PctCompleted, &r.State, &r.LGA, &r.Ward,
			&r.HasPictures, &r.HasGeolocation, &r.HasDocuments,
			&r.IsDraft, &r.HasSubmittedReport, &r.AgencyCode, &created, &updated, &fetched,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan response")
		}
		if created != nil {
			r.Created = *created
		}
		if updated != nil {
			r.Updated = *updated
		}
		if fetched != nil {
			r.FetchedAt = *fetched
		}
		responses = append(responses, r)
	}
	return responses, eris.Wrap(rows.Err(), "postgres: list responses iterate")
}

func (s *PostgresStore) LinkSurveyResponse(ctx context.Context, publicID, agencyCode, parentMinistry string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE survey_responses SET agency_code = $1, parent_ministry = $2 WHERE public_id = $3`,
		agencyCode, parentMinistry, publicID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: link response %s", publicID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("survey_response not found: %s", publicID)
	}
	return nil
}

func (s *PostgresStore) RecordIngestion(ctx context.Context, run *model.IngestionRun) error {
	var reportJSON []byte
	if run.Report != nil {
		b, err := json.Marshal(run.Report)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal ingestion report")
		}
		reportJSON = b
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingestion_runs (id, source_path, status, report, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
		 status = $3, report = $4, error = $5, finished_at = $7`,
		run.ID, run.SourcePath, string(run.Status), reportJSON, run.Error,
		run.StartedAt, run.FinishedAt,
	)
	return eris.Wrapf(err, "postgres: record ingestion %s", run.ID)
}

func (s *PostgresStore) LastIngestion(ctx context.Context) (*model.IngestionRun, error) {
	var run model.IngestionRun
	var status string
	var reportJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, source_path, status, report, error, started_at, finished_at
		FROM ingestion_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.SourcePath, &status, &reportJSON, &run.Error, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: last ingestion")
	}

	run.Status = model.IngestionRunStatus(status)
	if len(reportJSON) > 0 {
		run.Report = &model.IngestionReport{}
		if err := json.Unmarshal(reportJSON, run.Report); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal ingestion report")
		}
	}
	return &run, nil
}

func pgTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

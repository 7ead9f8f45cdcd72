package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/govwatch/compliance-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS entities (
	agency_code              TEXT PRIMARY KEY,
	ministry_code            TEXT NOT NULL,
	agency_name              TEXT NOT NULL,
	ministry_name            TEXT NOT NULL DEFAULT '',
	agency_name_normalized   TEXT NOT NULL DEFAULT '',
	ministry_name_normalized TEXT NOT NULL DEFAULT '',
	is_self_accounting       INTEGER NOT NULL DEFAULT 0,
	is_parastatal            INTEGER NOT NULL DEFAULT 0,
	is_active                INTEGER NOT NULL DEFAULT 1,
	fiscal_year              TEXT NOT NULL DEFAULT '',
	created_at               DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at               DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS budget_projects (
	project_code      TEXT NOT NULL,
	project_name      TEXT NOT NULL DEFAULT '',
	status_type       TEXT NOT NULL DEFAULT '',
	appropriation     REAL NOT NULL DEFAULT 0,
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
	appropriation        REAL,
	amount_released      REAL,
	amount_utilized      REAL,
	pct_completed        REAL,
	state                TEXT NOT NULL DEFAULT '',
	lga                  TEXT NOT NULL DEFAULT '',
	ward                 TEXT NOT NULL DEFAULT '',
	has_pictures         INTEGER NOT NULL DEFAULT 0,
	has_geolocation      INTEGER NOT NULL DEFAULT 0,
	has_documents        INTEGER NOT NULL DEFAULT 0,
	is_draft             INTEGER NOT NULL DEFAULT 0,
	has_submitted_report INTEGER NOT NULL DEFAULT 0,
	agency_code          TEXT NOT NULL DEFAULT '',
	created              DATETIME,
	updated              DATETIME,
	fetched_at           DATETIME
);

CREATE TABLE IF NOT EXISTS ingestion_runs (
	id          TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	status      TEXT NOT NULL,
	report      TEXT,
	error       TEXT NOT NULL DEFAULT '',
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_identity
	ON budget_projects(project_code, agency_code, agency_normalized);
CREATE INDEX IF NOT EXISTS idx_budget_agency_code ON budget_projects(agency_code);
CREATE INDEX IF NOT EXISTS idx_entities_ministry ON entities(ministry_code);
CREATE INDEX IF NOT EXISTS idx_responses_agency_code ON survey_responses(agency_code);
CREATE INDEX IF NOT EXISTS idx_responses_ergp ON survey_responses(ergp_code);
CREATE INDEX IF NOT EXISTS idx_ingestion_started ON ingestion_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceEntities(ctx context.Context, entities []model.Entity) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace entities: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace entities: clear")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities
		(agency_code, ministry_code, agency_name, ministry_name,
		 agency_name_normalized, ministry_name_normalized,
		 is_self_accounting, is_parastatal, is_active, fiscal_year,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace entities: prepare")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entities {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			e.AgencyCode, e.MinistryCode, e.AgencyName, e.MinistryName,
			e.AgencyNameNormalized, e.MinistryNameNormalized,
			e.IsSelfAccounting, e.IsParastatal, e.IsActive, e.FiscalYear,
			createdAt, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert entity %s", e.AgencyCode)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace entities: commit tx")
	}
	return len(entities), nil
}

func (s *SQLiteStore) ListEntities(ctx context.Context) ([]model.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agency_code, ministry_code, agency_name, ministry_name,
		       agency_name_normalized, ministry_name_normalized,
		       is_self_accounting, is_parastatal, is_active, fiscal_year,
		       created_at, updated_at
		FROM entities ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list entities")
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
			return nil, eris.Wrap(err, "sqlite: scan entity")
		}
		entities = append(entities, e)
	}
	return entities, eris.Wrap(rows.Err(), "sqlite: list entities iterate")
}

func (s *SQLiteStore) ReplaceBudgetProjects(ctx context.Context, projects []model.BudgetProject) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace budget: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_projects`); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace budget: clear")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO budget_projects
		(project_code, project_name, status_type, appropriation,
		 ministry_code, ministry_name, agency_code, agency_name, agency_normalized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: replace budget: prepare")
	}
	defer stmt.Close()

	for _, p := range projects {
		if _, err := stmt.ExecContext(ctx,
			p.ProjectCode, p.ProjectName, p.StatusType, p.Appropriation,
			p.MinistryCode, p.MinistryName, p.AgencyCode, p.AgencyName, p.AgencyNormalized,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert budget project %s", p.ProjectCode)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: replace budget: commit tx")
	}
	return len(projects), nil
}

func (s *SQLiteStore) ListBudgetProjects(ctx context.Context) ([]model.BudgetProject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_code, project_name, status_type, appropriation,
		       ministry_code, ministry_name, agency_code, agency_name, agency_normalized
		FROM budget_projects ORDER BY rowid`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list budget projects")
	}
	defer rows.Close()

	var projects []model.BudgetProject
	for rows.Next() {
		var p model.BudgetProject
		if err := rows.Scan(
			&p.ProjectCode, &p.ProjectName, &p.StatusType, &p.Appropriation,
			&p.MinistryCode, &p.MinistryName, &p.AgencyCode, &p.AgencyName, &p.AgencyNormalized,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan budget project")
		}
		projects = append(projects, p)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: list budget projects iterate")
}

func (s *SQLiteStore) UpsertSurveyResponses(ctx context.Context, responses []model.SurveyResponse) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert responses: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO survey_responses
		(public_id, survey_type, mda_name, parent_ministry, project_name,
		 ergp_code, project_status, appropriation, amount_released,
		 amount_utilized, pct_completed, state, lga, ward,
		 has_pictures, has_geolocation, has_documents,
		 is_draft, has_submitted_report, agency_code, created, updated, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(public_id) DO UPDATE SET
		 survey_type = excluded.survey_type,
		 mda_name = excluded.mda_name,
		 project_name = excluded.project_name,
		 ergp_code = excluded.ergp_code,
		 project_status = excluded.project_status,
		 appropriation = excluded.appropriation,
		 amount_released = excluded.amount_released,
		 amount_utilized = excluded.amount_utilized,
		 pct_completed = excluded.pct_completed,
		 state = excluded.state,
		 lga = excluded.lga,
		 ward = excluded.ward,
		 has_pictures = excluded.has_pictures,
		 has_geolocation = excluded.has_geolocation,
		 has_documents = excluded.has_documents,
		 is_draft = excluded.is_draft,
		 has_submitted_report = excluded.has_submitted_report,
		 updated = excluded.updated,
		 fetched_at = excluded.fetched_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert responses: prepare")
	}
	defer stmt.Close()

	for _, r := range responses {
		if _, err := stmt.ExecContext(ctx,
			r.PublicID, r.SurveyType, r.MDAName, r.ParentMinistry, r.ProjectName,
			r.ERGPCode, r.ProjectStatus, nullFloat(r.Appropriation), nullFloat(r.AmountReleased),
			nullFloat(r.AmountUtilized), nullFloat(r.PctCompleted), r.State, r.LGA, r.Ward,
			r.HasPictures, r.HasGeolocation, r.HasDocuments,
			r.IsDraft, r.HasSubmittedReport, r.AgencyCode,
			nullTime(r.Created), nullTime(r.Updated), nullTime(r.FetchedAt),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert response %s", r.PublicID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: upsert responses: commit tx")
	}
	return len(responses), nil
}

func (s *SQLiteStore) ListSurveyResponses(ctx context.Context) ([]model.SurveyResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT public_id, survey_type, mda_name, parent_ministry, project_name,
		       ergp_code, project_status, appropriation, amount_released,
		       amount_utilized, pct_completed, state, lga, ward,
		       has_pictures, has_geolocation, has_documents,
		       is_draft, has_submitted_report, agency_code, created, updated, fetched_at
		FROM survey_responses ORDER BY created`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list responses")
	}
	defer rows.Close()

	var responses []model.SurveyResponse
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *r)
	}
	return responses, eris.Wrap(rows.Err(), "sqlite: list responses iterate")
}

func (s *SQLiteStore) LinkSurveyResponse(ctx context.Context, publicID, agencyCode, parentMinistry string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE survey_responses SET agency_code = ?, parent_ministry = ? WHERE public_id = ?`,
		agencyCode, parentMinistry, publicID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: link response %s", publicID)
	}
	return checkRowsAffected(res, "survey_response", publicID)
}

func (s *SQLiteStore) RecordIngestion(ctx context.Context, run *model.IngestionRun) error {
	var reportJSON any
	if run.Report != nil {
		b, err := json.Marshal(run.Report)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal ingestion report")
		}
		reportJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_runs (id, source_path, status, report, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		 status = excluded.status,
		 report = excluded.report,
		 error = excluded.error,
		 finished_at = excluded.finished_at`,
		run.ID, run.SourcePath, string(run.Status), reportJSON, run.Error,
		run.StartedAt, run.FinishedAt,
	)
	return eris.Wrapf(err, "sqlite: record ingestion %s", run.ID)
}

func (s *SQLiteStore) LastIngestion(ctx context.Context) (*model.IngestionRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_path, status, report, error, started_at, finished_at
		FROM ingestion_runs ORDER BY started_at DESC LIMIT 1`)

	var run model.IngestionRun
	var status string
	var reportJSON sql.NullString
	var finishedAt sql.NullTime
	err := row.Scan(&run.ID, &run.SourcePath, &status, &reportJSON, &run.Error, &run.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last ingestion")
	}

	run.Status = model.IngestionRunStatus(status)
	if reportJSON.Valid {
		run.Report = &model.IngestionReport{}
		if err := json.Unmarshal([]byte(reportJSON.String), run.Report); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal ingestion report")
		}
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

type scannable interface {
	Scan(dest ...any) error
}

func scanResponse(row scannable) (*model.SurveyResponse, error) {
	var r model.SurveyResponse
	var appropriation, released, utilized, pct sql.NullFloat64
	var created, updated, fetched sql.NullTime

	err := row.Scan(
		&r.PublicID, &r.SurveyType, &r.MDAName, &r.ParentMinistry, &r.ProjectName,
		&r.ERGPCode, &r.ProjectStatus, &appropriation, &released,
		&utilized, &pct, &r.State, &r.LGA, &r.Ward,
		&r.HasPictures, &r.HasGeolocation, &r.HasDocuments,
		&r.IsDraft, &r.HasSubmittedReport, &r.AgencyCode, &created, &updated, &fetched,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan response")
	}

	r.Appropriation = floatPtr(appropriation)
	r.AmountReleased = floatPtr(released)
	r.AmountUtilized = floatPtr(utilized)
	r.PctCompleted = floatPtr(pct)
	if created.Valid {
		r.Created = created.Time
	}
	if updated.Valid {
		r.Updated = updated.Time
	}
	if fetched.Valid {
		r.FetchedAt = fetched.Time
	}
	return &r, nil
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

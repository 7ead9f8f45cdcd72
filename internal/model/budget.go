package model

import "time"

// BudgetProject is one aggregated appropriation record from the approved
// budget. Raw spreadsheet rows sharing (project code, entity) are summed into
// a single record before storage, so (ProjectCode, AgencyCode-or-empty) is
// unique after ingestion.
type BudgetProject struct {
	ProjectCode      string  `json:"project_code"` // ERGP code
	ProjectName      string  `json:"project_name,omitempty"`
	StatusType       string  `json:"status_type,omitempty"`
	Appropriation    float64 `json:"appropriation"`
	MinistryCode     string  `json:"ministry_code,omitempty"`
	MinistryName     string  `json:"ministry_name,omitempty"`
	AgencyCode       string  `json:"agency_code,omitempty"` // resolved canonical code, empty when unmatched
	AgencyName       string  `json:"agency_name,omitempty"`
	AgencyNormalized string  `json:"agency_normalized,omitempty"`
}

// UnmatchedBudgetRecord describes a budget record whose entity could not be
// resolved against the registry; kept for manual reconciliation.
type UnmatchedBudgetRecord struct {
	ProjectCode  string `json:"project_code"`
	AgencyName   string `json:"agency_name"`
	AgencyCode   string `json:"agency_code,omitempty"`
	MinistryName string `json:"ministry_name,omitempty"`
	MinistryCode string `json:"ministry_code,omitempty"`
}

// IngestionReport summarizes one budget ingestion run. It is the primary
// mechanism for catching reconciliation failures, not a debug artifact.
type IngestionReport struct {
	RowsRead       int                     `json:"rows_read"`
	RowsDropped    int                     `json:"rows_dropped"` // missing required fields or bad numerics
	RowsAggregated int                     `json:"rows_aggregated"`
	RowsStored     int                     `json:"rows_stored"`
	MatchCounts    map[string]int          `json:"match_counts"` // keyed by match-kind label
	Unmatched      []UnmatchedBudgetRecord `json:"unmatched,omitempty"`
}

// IngestionRunStatus is the terminal state of a recorded ingestion run.
type IngestionRunStatus string

const (
	IngestionRunning   IngestionRunStatus = "running"
	IngestionComplete  IngestionRunStatus = "complete"
	IngestionFailed    IngestionRunStatus = "failed"
)

// IngestionRun is the persisted log entry for one budget ingestion.
type IngestionRun struct {
	ID         string             `json:"id"`
	SourcePath string             `json:"source_path"`
	Status     IngestionRunStatus `json:"status"`
	Report     *IngestionReport   `json:"report,omitempty"`
	Error      string             `json:"error,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

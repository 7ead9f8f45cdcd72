package model

import "time"

// ComplianceRecord is the per-entity join of budget (expected) and survey
// (reported) project counts, keyed by canonical agency code. Derived data:
// recomputed on demand, never independently mutated.
type ComplianceRecord struct {
	AgencyCode        string  `json:"agency_code"` // canonical, post-consolidation
	DisplayName       string  `json:"display_name"`
	ParentMinistry    string  `json:"parent_ministry"`
	ExpectedProjects  int     `json:"expected_projects"`
	ReportedProjects  int     `json:"reported_projects"`
	TotalSubmissions  int     `json:"total_submissions"`
	ComplianceRatePct float64 `json:"compliance_rate_pct"` // capped at 100
	HasBudget         bool    `json:"has_budget"`
	HasSurvey         bool    `json:"has_survey"`
	IsMinistryHQ      bool    `json:"is_ministry_hq"`
}

// MinistryCompliance is the volume-weighted rollup of ComplianceRecords
// sharing a parent ministry. The rate is aggregate reported over aggregate
// expected, not an average of entity rates.
type MinistryCompliance struct {
	MinistryName      string  `json:"ministry_name"`
	AgencyCount       int     `json:"agency_count"`
	ExpectedProjects  int     `json:"expected_projects"`
	ReportedProjects  int     `json:"reported_projects"`
	TotalSubmissions  int     `json:"total_submissions"`
	ComplianceRatePct float64 `json:"compliance_rate_pct"`
}

// PerformanceRow extends a ComplianceRecord with engagement and evidence
// signals and the blended performance index.
type PerformanceRow struct {
	ComplianceRecord

	TotalResponses      int        `json:"total_responses"`
	SubmissionRatePct   float64    `json:"submission_rate_pct"`
	AvgCompletionPct    float64    `json:"avg_completion_pct"`
	EvidenceRatePct     float64    `json:"evidence_rate_pct"` // share of responses carrying any attachment type
	LatestResponseAt    *time.Time `json:"latest_response_at,omitempty"`
	DaysSinceLast       *int       `json:"days_since_last,omitempty"`
	RecencyScore        float64    `json:"recency_score"`     // 0-10 step function
	PerformanceIndex    float64    `json:"performance_index"` // 0-100 weighted blend
}

// QualityFlags counts per-entity data-quality red flags worth surfacing.
type QualityFlags struct {
	AgencyCode               string `json:"agency_code"`
	DisplayName              string `json:"display_name"`
	Responses                int    `json:"responses"`
	UtilizedExceedsReleased  int    `json:"utilized_exceeds_released"`
	MissingERGPCode          int    `json:"missing_ergp_code"`
	MissingState             int    `json:"missing_state"`
	MissingLGA               int    `json:"missing_lga"`
	SubmittedNoAppropriation int    `json:"submitted_no_appropriation"`
}

// Overview is the top-line budget-reporting summary across all entities.
type Overview struct {
	TotalBudgetProjects int     `json:"total_budget_projects"`
	ReportedProjects    int     `json:"reported_projects"`
	UnreportedProjects  int     `json:"unreported_projects"`
	ReportedPct         float64 `json:"reported_pct"`
	UnreportedPct       float64 `json:"unreported_pct"`
}

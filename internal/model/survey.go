package model

import "time"

// SurveyResponse is one submitted project-report form, reduced to the scalar
// fields the pipeline consumes. Optionality is explicit at this boundary:
// nil means the answer was absent or unparseable, decided once during
// extraction rather than re-checked by every consumer.
type SurveyResponse struct {
	PublicID   string `json:"public_id"`
	SurveyType string `json:"survey_type"` // "survey1" or "survey2"

	MDAName        string `json:"mda_name,omitempty"`        // raw free-text agency name
	ParentMinistry string `json:"parent_ministry,omitempty"` // raw free-text ministry name
	ProjectName    string `json:"project_name,omitempty"`    // cleaned, ERGP code removed
	ERGPCode       string `json:"ergp_code,omitempty"`       // extracted from the composite project-name field
	ProjectStatus  string `json:"project_status,omitempty"`

	Appropriation  *float64 `json:"appropriation,omitempty"`
	AmountReleased *float64 `json:"amount_released,omitempty"`
	AmountUtilized *float64 `json:"amount_utilized,omitempty"`
	PctCompleted   *float64 `json:"pct_completed,omitempty"` // self-reported completion percentage

	State string `json:"state,omitempty"`
	LGA   string `json:"lga,omitempty"`
	Ward  string `json:"ward,omitempty"`

	// Evidence-attachment presence, derived from the raw payload once.
	HasPictures    bool `json:"has_pictures"`
	HasGeolocation bool `json:"has_geolocation"`
	HasDocuments   bool `json:"has_documents"`

	IsDraft            bool `json:"is_draft"`
	HasSubmittedReport bool `json:"has_submitted_report"`

	// AgencyCode is the resolved registry entity, assigned by the linking
	// step; empty until linked.
	AgencyCode string `json:"agency_code,omitempty"`

	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// UnlinkedResponse identifies a survey response whose MDA name could not be
// resolved against the registry.
type UnlinkedResponse struct {
	PublicID string `json:"public_id"`
	MDAName  string `json:"mda_name"`
	ERGPCode string `json:"ergp_code,omitempty"`
}

// LinkReport summarizes one survey-linking pass.
type LinkReport struct {
	Linked    int                `json:"linked"` // exact normalized-name matches
	Fuzzy     int                `json:"fuzzy"`  // accepted above the fuzzy threshold
	Unmatched []UnlinkedResponse `json:"unmatched,omitempty"`
}

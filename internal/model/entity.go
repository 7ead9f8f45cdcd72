// Package model defines the shared data types for the compliance pipeline.
package model

import "time"

// Entity is one canonical registry record from the government coding system:
// an agency (MDA) and the ministry it belongs to. Normalized names are derived
// from the raw names at load time and never hand-edited independently.
type Entity struct {
	MinistryCode           string    `json:"ministry_code"`
	AgencyCode             string    `json:"agency_code"` // unique among active entities per fiscal year
	AgencyName             string    `json:"agency_name"`
	MinistryName           string    `json:"ministry_name"`
	AgencyNameNormalized   string    `json:"agency_name_normalized"`
	MinistryNameNormalized string    `json:"ministry_name_normalized"`
	IsSelfAccounting       bool      `json:"is_self_accounting"` // agency that is also its own ministry
	IsParastatal           bool      `json:"is_parastatal"`
	IsActive               bool      `json:"is_active"`
	FiscalYear             string    `json:"fiscal_year"`
	CreatedAt              time.Time `json:"created_at,omitempty"`
	UpdatedAt              time.Time `json:"updated_at,omitempty"`
}

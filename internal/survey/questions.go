// Package survey turns raw survey API payloads into typed report records:
// question-text normalization, answer extraction, project-code parsing, and
// linking of free-text MDA names to registry entities.
package survey

import "strings"

// Field names for the answers the pipeline consumes. The two survey
// instruments phrase the same questions differently, so extraction goes
// question text -> standard form -> field.
const (
	FieldProjectName   = "project_name"
	FieldMDAName       = "mda_name"
	FieldProjectStatus = "project_status"
	FieldAppropriation = "appropriation_amount"
	FieldReleased      = "amount_released"
	FieldUtilized      = "amount_utilized"
	FieldPctCompleted  = "percentage_completed"
	FieldState         = "state"
	FieldLGA           = "lga"
	FieldWard          = "ward"
	FieldGeolocations  = "geolocations"
	FieldPictures      = "project_pictures"
	FieldDocuments     = "other_documents"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldChallenges    = "challenges_recommendations"
	FieldContractor    = "contractor_name"
	FieldExecution     = "execution_method"
)

// questionAliases maps variant question phrasings (typos, year suffixes,
// stray punctuation, case drift) to the standard form. Standard forms map to
// themselves so already-clean text passes through.
var questionAliases = map[string]string{
	// survey instrument 1
	"Project Stautus":             "Project Status",
	"STATE?":                      "STATE",
	"LGA?":                        "LGA",
	"WARD?":                       "WARD",
	"PROJECT APPROPRIATION 2024":  "PROJECT APPROPRIATION",
	"AMOUNT RELEASED 2024":        "AMOUNT RELEASED",
	"AMOUNT UTILIZED 2024":        "AMOUNT UTILIZED",
	"What are the challenges and recommendations": "WHAT ARE THE CHALLENGES AND RECOMMENDATIONS",

	// survey instrument 2
	"Project Execution": "PROJECT EXECUTION",

	// standard forms
	"Project Status":        "Project Status",
	"PROJECT EXECUTION":     "PROJECT EXECUTION",
	"STATE":                 "STATE",
	"LGA":                   "LGA",
	"WARD":                  "WARD",
	"PROJECT APPROPRIATION": "PROJECT APPROPRIATION",
	"AMOUNT RELEASED":       "AMOUNT RELEASED",
	"AMOUNT UTILIZED":       "AMOUNT UTILIZED",
	"WHAT ARE THE CHALLENGES AND RECOMMENDATIONS": "WHAT ARE THE CHALLENGES AND RECOMMENDATIONS",
}

// standardFields maps standard question text to the field it populates.
var standardFields = map[string]string{
	"PROJECT NAME":               FieldProjectName,
	"Name of MDA":                FieldMDAName,
	"Project Status":             FieldProjectStatus,
	"PROJECT EXECUTION":          FieldExecution,
	"CONTRACTOR NAME":            FieldContractor,
	"PROJECT APPROPRIATION":      FieldAppropriation,
	"AMOUNT RELEASED":            FieldReleased,
	"AMOUNT UTILIZED":            FieldUtilized,
	"PERCENTAGE COMPLETED %":     FieldPctCompleted,
	"START DATE":                 FieldStartDate,
	"END DATE":                   FieldEndDate,
	"STATE":                      FieldState,
	"LGA":                        FieldLGA,
	"WARD":                       FieldWard,
	"GEOLOCATIONS":               FieldGeolocations,
	"PROJECT PICTURES":           FieldPictures,
	"OTHER RELEVANT DOCUMENTS":   FieldDocuments,
	"WHAT ARE THE CHALLENGES AND RECOMMENDATIONS": FieldChallenges,
}

// NormalizeQuestion maps a question's text to its standard form. Unknown
// text passes through unchanged. Matching is exact first, then
// case-insensitive against the alias table.
func NormalizeQuestion(text string) string {
	if text == "" {
		return ""
	}
	if std, ok := questionAliases[text]; ok {
		return std
	}
	lower := strings.ToLower(text)
	for alias, std := range questionAliases {
		if strings.ToLower(alias) == lower {
			return std
		}
	}
	return text
}

// fieldForQuestion returns the field a question populates, or "" if the
// question is not one the pipeline consumes.
func fieldForQuestion(text string) string {
	return standardFields[NormalizeQuestion(text)]
}

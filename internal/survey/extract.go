package survey

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/govwatch/compliance-cli/internal/model"
	"github.com/govwatch/compliance-cli/pkg/surveyapi"
)

// Extract reduces one raw API response to the typed record the pipeline
// stores. Missing or unparseable answers become zero values (nil for the
// numeric pointers); extraction never fails on malformed answer payloads.
func Extract(raw surveyapi.Response, surveyType string, fetchedAt time.Time) model.SurveyResponse {
	answers := indexAnswers(raw.Sections)

	rec := model.SurveyResponse{
		PublicID:           raw.PublicID,
		SurveyType:         surveyType,
		MDAName:            answers.text(FieldMDAName),
		ProjectStatus:      answers.text(FieldProjectStatus),
		Appropriation:      answers.amount(FieldAppropriation),
		AmountReleased:     answers.amount(FieldReleased),
		AmountUtilized:     answers.amount(FieldUtilized),
		PctCompleted:       answers.amount(FieldPctCompleted),
		State:              answers.text(FieldState),
		LGA:                answers.text(FieldLGA),
		Ward:               answers.text(FieldWard),
		HasPictures:        answers.present(FieldPictures),
		HasGeolocation:     answers.present(FieldGeolocations),
		HasDocuments:       answers.present(FieldDocuments),
		IsDraft:            raw.IsDraft,
		HasSubmittedReport: raw.HasSubmittedReport,
		Created:            parseTimestamp(raw.Created),
		Updated:            parseTimestamp(raw.Updated),
		FetchedAt:          fetchedAt,
	}

	// MDA name sometimes arrives blank with the organization registration
	// carrying the real name.
	if rec.MDAName == "" {
		rec.MDAName = strings.TrimSpace(raw.Organization.Name)
	}

	rec.ProjectName, rec.ERGPCode = ExtractProjectCode(answers.text(FieldProjectName))

	return rec
}

// answerIndex holds one response's answers keyed by standard field name.
// First answer wins when a question repeats across sections.
type answerIndex map[string]surveyapi.Answer

func indexAnswers(sections []surveyapi.Section) answerIndex {
	idx := make(answerIndex)
	for _, sec := range sections {
		for _, ans := range sec.Answers {
			if ans.Question == nil {
				continue
			}
			field := fieldForQuestion(ans.Question.Text)
			if field == "" {
				continue
			}
			if _, seen := idx[field]; !seen {
				idx[field] = ans
			}
		}
	}
	return idx
}

func (idx answerIndex) text(field string) string {
	ans, ok := idx[field]
	if !ok {
		return ""
	}
	switch v := ans.Body.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// amount parses a numeric answer, tolerating thousands separators and
// currency noise. Unparseable values become nil rather than zero so absent
// and zero stay distinguishable downstream.
func (idx answerIndex) amount(field string) *float64 {
	ans, ok := idx[field]
	if !ok {
		return nil
	}
	switch v := ans.Body.(type) {
	case float64:
		return &v
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		s = strings.TrimSuffix(s, "%")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// present reports whether an attachment-style answer carries any content:
// uploaded files, a non-empty body string, or a non-empty body list.
func (idx answerIndex) present(field string) bool {
	ans, ok := idx[field]
	if !ok {
		return false
	}
	if len(ans.Files) > 0 {
		return true
	}
	switch v := ans.Body.(type) {
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return false
	}
}

// parseTimestamp handles the API's RFC 3339 timestamps, with and without
// fractional seconds. Unparseable input yields the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package surveyapi

// Response is one raw survey submission as returned by the API.
// Most business fields live inside the Sections/Answers tree and are
// pulled out downstream.
type Response struct {
	PublicID           string       `json:"public_id"`
	Name               string       `json:"name"`
	Survey             SurveyRef    `json:"survey"`
	Owner              Owner        `json:"owner"`
	Organization       Organization `json:"organization"`
	IsDraft            bool         `json:"is_draft"`
	HasSubmittedReport bool         `json:"has_submitted_report"`
	Created            string       `json:"created"`
	Updated            string       `json:"updated"`
	Sections           []Section    `json:"sections"`
}

// SurveyRef identifies which survey instrument a response belongs to.
type SurveyRef struct {
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
}

// Owner is the account that submitted the response.
type Owner struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Organization is the reporting MDA as registered with the survey platform.
type Organization struct {
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
}

// Section groups answers under one survey section.
type Section struct {
	PublicID string   `json:"public_id"`
	Name     string   `json:"name"`
	Answers  []Answer `json:"answers"`
}

// Answer pairs a question with its submitted value. Body is untyped
// because the API returns strings, numbers, lists, and nested objects
// depending on the question type.
type Answer struct {
	PublicID string    `json:"public_id"`
	Question *Question `json:"question"`
	Body     any       `json:"body"`
	Files    []File    `json:"files"`
}

// Question carries the prompt text an answer responds to.
type Question struct {
	PublicID string `json:"public_id"`
	Text     string `json:"text"`
	Kind     string `json:"kind"`
}

// File is an uploaded attachment (photo, document) on an answer.
type File struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
	Kind     string `json:"kind"`
}

package model

import "time"

// WireAnswer is one atomic fact of a submission. Exactly one of TextValue
// and OptionID is set.
type WireAnswer struct {
	QuestionID int     `json:"question_id" bson:"questionId"`
	TextValue  *string `json:"text_value,omitempty" bson:"textValue,omitempty"`
	OptionID   *int    `json:"option_id,omitempty" bson:"optionId,omitempty"`
}

// TextEntry builds a text-valued wire answer
func TextEntry(questionID int, text string) WireAnswer {
	return WireAnswer{QuestionID: questionID, TextValue: &text}
}

// OptionEntry builds an option-valued wire answer
func OptionEntry(questionID, optionID int) WireAnswer {
	return WireAnswer{QuestionID: questionID, OptionID: &optionID}
}

// SubmitRequest is the payload of the submit-responses contract
type SubmitRequest struct {
	RespondentID     int                    `json:"respondent_id" bson:"respondentId"`
	SurveyID         int                    `json:"survey_id" bson:"surveyId"`
	ContextReference string                 `json:"context_reference" bson:"contextReference"`
	ContextMetadata  map[string]interface{} `json:"context_metadata" bson:"contextMetadata"`
	Responses        []WireAnswer           `json:"responses" bson:"responses"`
}

// Submission is a stored SubmitRequest (mongo backend)
type Submission struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	SubmitRequest `bson:",inline"`
	SubmittedAt   time.Time `json:"submitted_at" bson:"submittedAt"`
}

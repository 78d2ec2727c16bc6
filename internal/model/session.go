package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims for a session-scoped respondent token
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	SurveyID  int    `json:"surveyId"`
	jwt.RegisteredClaims
}

// StartSessionRequest is the request body for starting a survey session
type StartSessionRequest struct {
	RespondentID    int                    `json:"respondent_id"`
	ContextMetadata map[string]interface{} `json:"context_metadata,omitempty"`
}

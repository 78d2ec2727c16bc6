package service

import (
	"errors"
	"fmt"

	"surveyflow/internal/client"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSurveyNotFound  = errors.New("survey not found")
	ErrInvalidToken    = errors.New("invalid or expired token")
)

// LoadError is a failed survey definition fetch. A session cannot start
// without a definition, so it is fatal for that session.
type LoadError struct {
	SurveyID int
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load survey %d: %v", e.SurveyID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the backend has no such survey
func (e *LoadError) NotFound() bool {
	return errors.Is(e.Err, ErrSurveyNotFound) || errors.Is(e.Err, client.ErrNotFound)
}

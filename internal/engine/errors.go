package engine

import "errors"

var (
	ErrCompleted          = errors.New("survey already submitted")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrUnknownQuestion    = errors.New("question is not part of this survey")
	ErrNoPages            = errors.New("survey has no pages")
)

// SubmissionError is a failed submit call. The navigator stays on the last
// page; calling Advance again retries.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submit responses: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

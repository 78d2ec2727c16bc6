package engine

import "surveyflow/internal/model"

// AnswerStore holds in-progress answers by question id, and the validation
// messages shown next to them.
type AnswerStore struct {
	answers map[int]model.Answer
	errors  map[int]string
}

// NewAnswerStore creates an empty store
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{
		answers: make(map[int]model.Answer),
		errors:  make(map[int]string),
	}
}

// Set records an answer. The key stays present even when the answer is
// empty; a non-empty answer clears the question's error.
func (s *AnswerStore) Set(questionID int, a model.Answer) {
	s.answers[questionID] = a
	if !model.IsEmpty(a) {
		delete(s.errors, questionID)
	}
}

// Get returns the answer for a question, if a key exists
func (s *AnswerStore) Get(questionID int) (model.Answer, bool) {
	a, ok := s.answers[questionID]
	return a, ok
}

// Len is the number of answer keys, empty answers included
func (s *AnswerStore) Len() int {
	return len(s.answers)
}

// Error returns the validation message for a question
func (s *AnswerStore) Error(questionID int) (string, bool) {
	msg, ok := s.errors[questionID]
	return msg, ok
}

// Errors returns a copy of the error map
func (s *AnswerStore) Errors() map[int]string {
	out := make(map[int]string, len(s.errors))
	for id, msg := range s.errors {
		out[id] = msg
	}
	return out
}

// ReplaceErrors swaps the whole error map, as page validation does
func (s *AnswerStore) ReplaceErrors(errs map[int]string) {
	s.errors = make(map[int]string, len(errs))
	for id, msg := range errs {
		s.errors[id] = msg
	}
}

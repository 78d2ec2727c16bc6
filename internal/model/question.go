package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind   = errors.New("unknown question kind")
	ErrNotAnswerable = errors.New("question does not take answers")
	ErrAnswerShape   = errors.New("answer does not match question kind")
)

// QuestionKind defines the type of question
type QuestionKind string

// Adding a kind means adding a method to Cases, a branch to Match and an
// entry to kindAliases. Match reports ErrUnknownKind for a kind it has no
// branch for; the compiler does not catch it.
const (
	KindFreeText     QuestionKind = "free_text"
	KindSingleChoice QuestionKind = "single_choice"
	KindMultiChoice  QuestionKind = "multi_choice"
	KindMatrix       QuestionKind = "matrix"
	KindSection      QuestionKind = "section" // Divider, titles the pages that follow it
)

// kindAliases maps the backend's legacy vocabulary onto canonical kinds.
var kindAliases = map[string]QuestionKind{
	"free_text":       KindFreeText,
	"texto_libre":     KindFreeText,
	"single_choice":   KindSingleChoice,
	"opcion_unica":    KindSingleChoice,
	"multi_choice":    KindMultiChoice,
	"opcion_multiple": KindMultiChoice,
	"matrix":          KindMatrix,
	"matriz":          KindMatrix,
	"section":         KindSection,
	"seccion":         KindSection,
}

// ParseQuestionKind resolves a kind name, accepting legacy aliases.
func ParseQuestionKind(s string) (QuestionKind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// UnmarshalText lets JSON and YAML decoding normalize aliases.
func (k *QuestionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseQuestionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Option is one selectable choice of a single/multi choice question
type Option struct {
	ID       int    `json:"id" bson:"id" yaml:"id"`
	Text     string `json:"text" bson:"text" yaml:"text"`
	Position int    `json:"position" bson:"position" yaml:"position"`
}

// Question is one entry of a survey definition
type Question struct {
	ID           int          `json:"id" bson:"id" yaml:"id"`
	Text         string       `json:"text" bson:"text" yaml:"text"`
	Kind         QuestionKind `json:"kind" bson:"kind" yaml:"kind"`
	Position     int          `json:"position" bson:"position" yaml:"position"`
	Required     bool         `json:"required" bson:"required" yaml:"required"`
	ErrorMessage string       `json:"error_message,omitempty" bson:"errorMessage,omitempty" yaml:"error_message,omitempty"`

	Options []Option `json:"options,omitempty" bson:"options,omitempty" yaml:"options,omitempty"` // choice kinds only

	// Matrix only. Cells are addressed by positional row/column index.
	Rows              []string `json:"rows,omitempty" bson:"rows,omitempty" yaml:"rows,omitempty"`
	Columns           []string `json:"columns,omitempty" bson:"columns,omitempty" yaml:"columns,omitempty"`
	MultiSelectPerRow bool     `json:"multi_select_per_row,omitempty" bson:"multiSelectPerRow,omitempty" yaml:"multi_select_per_row,omitempty"`
}

// IsSection reports whether q is a page divider
func (q *Question) IsSection() bool {
	return q.Kind == KindSection
}

// Option returns the option with the given id
func (q *Question) Option(id int) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Cases has one method per question kind. Every kind-dependent behaviour
// (validation, serialization, decoding, rendering) implements it, so a new
// method here does not compile until all of them handle it.
type Cases[T any] interface {
	FreeText(q *Question) (T, error)
	SingleChoice(q *Question) (T, error)
	MultiChoice(q *Question) (T, error)
	Matrix(q *Question) (T, error)
	Section(q *Question) (T, error)
}

// Match dispatches q to the case for its kind.
func Match[T any](q *Question, c Cases[T]) (T, error) {
	switch q.Kind {
	case KindFreeText:
		return c.FreeText(q)
	case KindSingleChoice:
		return c.SingleChoice(q)
	case KindMultiChoice:
		return c.MultiChoice(q)
	case KindMatrix:
		return c.Matrix(q)
	case KindSection:
		return c.Section(q)
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownKind, q.Kind)
}

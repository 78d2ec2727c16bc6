package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultErrorMessage is shown for an unanswered required question without its own message
const DefaultErrorMessage = "This question is required"

var ErrInvalidDefinition = errors.New("invalid survey definition")

// PaginationPolicy decides how questions are grouped into pages
type PaginationPolicy string

const (
	PaginationOnePage     PaginationPolicy = "one_page"
	PaginationPerSection  PaginationPolicy = "per_section"
	PaginationPerQuestion PaginationPolicy = "per_question"
)

// ProgressMode decides how progress is displayed
type ProgressMode string

const (
	ProgressPercentage ProgressMode = "percentage"
	ProgressCount      ProgressMode = "count"
)

var paginationAliases = map[string]PaginationPolicy{
	"todas":        PaginationOnePage,
	"por_seccion":  PaginationPerSection,
	"por_pregunta": PaginationPerQuestion,
}

var progressAliases = map[string]ProgressMode{
	"porcentaje": ProgressPercentage,
	"numero":     ProgressCount,
}

// SurveySettings configures the runtime behaviour of a survey
type SurveySettings struct {
	Pagination      PaginationPolicy `json:"pagination" bson:"pagination" yaml:"pagination"`
	ProgressDisplay ProgressMode     `json:"progress_display" bson:"progressDisplay" yaml:"progress_display"`
	// AllowSkipping lets respondents leave a page with unanswered required
	// questions. The final page is validated regardless. Absent means true.
	AllowSkipping  *bool  `json:"allow_skipping,omitempty" bson:"allowSkipping,omitempty" yaml:"allow_skipping,omitempty"`
	ClosingMessage string `json:"closing_message,omitempty" bson:"closingMessage,omitempty" yaml:"closing_message,omitempty"`
}

// SkippingAllowed resolves AllowSkipping with its default
func (s SurveySettings) SkippingAllowed() bool {
	return s.AllowSkipping == nil || *s.AllowSkipping
}

// Survey is a survey definition as served by the backend
type Survey struct {
	ID          int            `json:"id" bson:"_id" yaml:"id"`
	Name        string         `json:"name" bson:"name" yaml:"name"`
	Description string         `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Settings    SurveySettings `json:"settings" bson:"settings" yaml:"settings"`
	Questions   []Question     `json:"questions" bson:"questions" yaml:"questions"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// Normalize canonicalizes kind and policy names, orders questions and
// options by position, fills default error messages and rejects duplicate ids.
func (s *Survey) Normalize() error {
	if p, ok := paginationAliases[strings.ToLower(string(s.Settings.Pagination))]; ok {
		s.Settings.Pagination = p
	}
	if s.Settings.Pagination == "" {
		s.Settings.Pagination = PaginationPerQuestion
	}
	if m, ok := progressAliases[strings.ToLower(string(s.Settings.ProgressDisplay))]; ok {
		s.Settings.ProgressDisplay = m
	}
	if s.Settings.ProgressDisplay != ProgressCount {
		s.Settings.ProgressDisplay = ProgressPercentage
	}

	sort.SliceStable(s.Questions, func(i, j int) bool {
		return s.Questions[i].Position < s.Questions[j].Position
	})

	seen := make(map[int]bool, len(s.Questions))
	for i := range s.Questions {
		q := &s.Questions[i]
		kind, err := ParseQuestionKind(string(q.Kind))
		if err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidDefinition, q.ID, err)
		}
		q.Kind = kind

		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %d", ErrInvalidDefinition, q.ID)
		}
		seen[q.ID] = true

		sort.SliceStable(q.Options, func(a, b int) bool {
			return q.Options[a].Position < q.Options[b].Position
		})
		optionSeen := make(map[int]bool, len(q.Options))
		for _, o := range q.Options {
			if optionSeen[o.ID] {
				return fmt.Errorf("%w: question %d: duplicate option id %d", ErrInvalidDefinition, q.ID, o.ID)
			}
			optionSeen[o.ID] = true
		}

		if q.IsSection() {
			q.Required = false
			continue
		}
		if q.Required && q.ErrorMessage == "" {
			q.ErrorMessage = DefaultErrorMessage
		}
	}
	return nil
}

// Page is a derived, navigable group of questions. Never holds sections.
type Page struct {
	Number    int        `json:"number"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

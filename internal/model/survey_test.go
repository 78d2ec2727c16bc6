package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseQuestionKind(t *testing.T) {
	tests := []struct {
		in   string
		want QuestionKind
	}{
		{"free_text", KindFreeText},
		{"texto_libre", KindFreeText},
		{" Opcion_Unica ", KindSingleChoice},
		{"opcion_multiple", KindMultiChoice},
		{"MATRIZ", KindMatrix},
		{"seccion", KindSection},
		{"section", KindSection},
	}
	for _, tt := range tests {
		got, err := ParseQuestionKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseQuestionKind("slider")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSurvey_DecodeJSONAliases(t *testing.T) {
	raw := `{
		"id": 3,
		"name": "Feedback",
		"settings": {"pagination": "por_seccion", "progress_display": "numero", "allow_skipping": false},
		"questions": [
			{"id": 2, "text": "Why?", "kind": "texto_libre", "position": 2, "required": true},
			{"id": 1, "text": "Part one", "kind": "seccion", "position": 1, "required": true},
			{"id": 3, "text": "Pick", "kind": "opcion_unica", "position": 3,
			 "options": [{"id": 31, "text": "B", "position": 2}, {"id": 30, "text": "A", "position": 1}]}
		]
	}`
	var s Survey
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	require.NoError(t, s.Normalize())

	assert.Equal(t, PaginationPerSection, s.Settings.Pagination)
	assert.Equal(t, ProgressCount, s.Settings.ProgressDisplay)
	assert.False(t, s.Settings.SkippingAllowed())

	require.Len(t, s.Questions, 3)
	assert.Equal(t, KindSection, s.Questions[0].Kind)
	assert.False(t, s.Questions[0].Required, "sections are never required")
	assert.Equal(t, DefaultErrorMessage, s.Questions[1].ErrorMessage)
	assert.Equal(t, 30, s.Questions[2].Options[0].ID)
	assert.Empty(t, s.Questions[2].ErrorMessage)
}

func TestSurvey_NormalizeDefaults(t *testing.T) {
	s := Survey{ID: 1, Settings: SurveySettings{ProgressDisplay: "bogus"}}
	require.NoError(t, s.Normalize())

	assert.Equal(t, PaginationPerQuestion, s.Settings.Pagination)
	assert.Equal(t, ProgressPercentage, s.Settings.ProgressDisplay)
	assert.True(t, s.Settings.SkippingAllowed())
}

func TestSurvey_NormalizeRejects(t *testing.T) {
	tests := []struct {
		name      string
		questions []Question
	}{
		{"duplicate question", []Question{{ID: 1, Kind: KindFreeText}, {ID: 1, Kind: KindMatrix}}},
		{"duplicate option", []Question{{ID: 1, Kind: KindSingleChoice, Options: []Option{{ID: 4}, {ID: 4}}}}},
		{"unknown kind", []Question{{ID: 1, Kind: "slider"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Survey{ID: 1, Questions: tt.questions}
			assert.ErrorIs(t, s.Normalize(), ErrInvalidDefinition)
		})
	}
}

func TestSurvey_DecodeYAML(t *testing.T) {
	doc := `
id: 12
name: Onboarding
settings:
  pagination: todas
questions:
  - id: 1
    text: Rate us
    kind: matriz
    required: true
    error_message: Please rate every row
    rows: [Speed, Quality]
    columns: [Bad, Good]
`
	var s Survey
	require.NoError(t, yaml.Unmarshal([]byte(doc), &s))
	require.NoError(t, s.Normalize())

	assert.Equal(t, PaginationOnePage, s.Settings.Pagination)
	q := s.Questions[0]
	assert.Equal(t, KindMatrix, q.Kind)
	assert.Equal(t, []string{"Speed", "Quality"}, q.Rows)
	assert.Equal(t, "Please rate every row", q.ErrorMessage)
}

func TestMatch_UnknownKind(t *testing.T) {
	_, err := Match[Answer](&Question{ID: 1, Kind: "slider"}, answerDecoder{})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

type kindNamer struct{}

func (kindNamer) FreeText(*Question) (QuestionKind, error)     { return KindFreeText, nil }
func (kindNamer) SingleChoice(*Question) (QuestionKind, error) { return KindSingleChoice, nil }
func (kindNamer) MultiChoice(*Question) (QuestionKind, error)  { return KindMultiChoice, nil }
func (kindNamer) Matrix(*Question) (QuestionKind, error)       { return KindMatrix, nil }
func (kindNamer) Section(*Question) (QuestionKind, error)      { return KindSection, nil }

func TestMatch_HandlesEveryKind(t *testing.T) {
	for alias, kind := range kindAliases {
		got, err := Match[QuestionKind](&Question{ID: 1, Kind: kind}, kindNamer{})
		require.NoError(t, err, "kind %q (alias %q) has no branch in Match", kind, alias)
		assert.Equal(t, kind, got)
	}
}

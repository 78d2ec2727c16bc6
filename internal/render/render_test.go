package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

var (
	colour = &model.Question{ID: 2, Text: "Colours", Kind: model.KindMultiChoice, Options: []model.Option{
		{ID: 21, Text: "Red"}, {ID: 22, Text: "Green"}, {ID: 23, Text: "Blue"},
	}}
	grid = &model.Question{ID: 4, Text: "Rate", Kind: model.KindMatrix, Required: true,
		Rows: []string{"Punctuality", "Clarity"}, Columns: []string{"Low", "Medium", "High"}}
)

func TestParseInput(t *testing.T) {
	single := &model.Question{ID: 1, Kind: model.KindSingleChoice, Options: colour.Options}
	multiGrid := *grid
	multiGrid.MultiSelectPerRow = true

	tests := []struct {
		name string
		q    *model.Question
		line string
		want model.Answer
	}{
		{"text", &model.Question{Kind: model.KindFreeText}, "  hello there ", model.TextAnswer("hello there")},
		{"single", single, "3", model.ChoiceAnswer("23")},
		{"single blank", single, "", model.ChoiceAnswer("")},
		{"multi", colour, "1, 3,1", model.MultiChoiceAnswer{"21", "23"}},
		{"multi blank", colour, " ", model.MultiChoiceAnswer{}},
		{"matrix", grid, "1:3; 2:2", model.MatrixAnswer{0: {2}, 1: {1}}},
		{"matrix multi", &multiGrid, "1:1,3", model.MatrixAnswer{0: {0, 2}}},
		{"matrix repeated column", &multiGrid, "2:3,3", model.MatrixAnswer{1: {2}}},
		{"matrix repeated single column", grid, "1:2,2", model.MatrixAnswer{0: {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInput(tt.q, tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, model.CheckAnswer(tt.q, got))
		})
	}
}

func TestParseInput_Errors(t *testing.T) {
	tests := []struct {
		name string
		q    *model.Question
		line string
	}{
		{"option out of range", colour, "4"},
		{"option zero", colour, "0"},
		{"not a number", colour, "red"},
		{"matrix missing colon", grid, "1"},
		{"matrix bad row", grid, "3:1"},
		{"matrix two columns single select", grid, "1:1,2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInput(tt.q, tt.line)
			assert.ErrorIs(t, err, ErrBadInput)
		})
	}

	_, err := ParseInput(&model.Question{Kind: model.KindSection}, "x")
	assert.ErrorIs(t, err, model.ErrNotAnswerable)
}

func TestWriteView(t *testing.T) {
	page := model.Page{Number: 2, Title: "Details", Questions: []model.Question{*colour, *grid}}
	v := engine.View{
		State:      engine.StateInProgress,
		PageNumber: 2,
		PageCount:  3,
		Page:       &page,
		Answers: map[int]model.Answer{
			2: model.MultiChoiceAnswer{"22"},
			4: model.MatrixAnswer{1: {2}},
		},
		Errors:   map[int]string{4: "Please rate"},
		Progress: engine.Progress{Display: "50%"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteView(&buf, v))
	out := buf.String()

	assert.Contains(t, out, "Page 2 of 3 - Details")
	assert.Contains(t, out, "Progress: 50%")
	assert.Contains(t, out, "[ ] 1. Red")
	assert.Contains(t, out, "[x] 2. Green")
	assert.Contains(t, out, "Q1. Colours")
	assert.Contains(t, out, "Q2. Rate *")
	assert.Contains(t, out, "2. Clarity: High")
	assert.Contains(t, out, "! Please rate")
}

func TestWriteView_Completed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteView(&buf, engine.View{State: engine.StateCompleted, ClosingMessage: "Bye"}))
	assert.Equal(t, "Survey submitted.\nBye\n", buf.String())
}

func TestPageQuestion(t *testing.T) {
	page := &model.Page{Questions: []model.Question{
		{ID: 9, Kind: model.KindSection, Text: "Intro"},
		*colour,
		*grid,
	}}

	q, ok := PageQuestion(page, 2)
	require.True(t, ok)
	assert.Equal(t, 4, q.ID)

	_, ok = PageQuestion(page, 3)
	assert.False(t, ok)
	_, ok = PageQuestion(page, 0)
	assert.False(t, ok)
	_, ok = PageQuestion(nil, 1)
	assert.False(t, ok)
}

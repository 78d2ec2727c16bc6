package render

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"surveyflow/internal/model"
)

var ErrBadInput = errors.New("unrecognized input")

// ParseInput turns a typed line into an answer for q. Options, rows and
// columns are numbered from 1 as they are displayed:
//
//	free_text      any text
//	single_choice  2
//	multi_choice   1,3
//	matrix         1:2;2:3   (row:column, or row:1,2 for multi-select rows)
//
// A blank line yields the empty answer of the question's kind.
func ParseInput(q *model.Question, line string) (model.Answer, error) {
	return model.Match[model.Answer](q, inputParser{line: strings.TrimSpace(line)})
}

type inputParser struct {
	line string
}

func (p inputParser) FreeText(q *model.Question) (model.Answer, error) {
	return model.TextAnswer(p.line), nil
}

func (p inputParser) SingleChoice(q *model.Question) (model.Answer, error) {
	if p.line == "" {
		return model.ChoiceAnswer(""), nil
	}
	o, err := optionAt(q, p.line)
	if err != nil {
		return nil, err
	}
	return model.ChoiceAnswer(model.OptionKey(o.ID)), nil
}

func (p inputParser) MultiChoice(q *model.Question) (model.Answer, error) {
	out := model.MultiChoiceAnswer{}
	if p.line == "" {
		return out, nil
	}
	seen := make(map[int]bool)
	for _, part := range strings.Split(p.line, ",") {
		o, err := optionAt(q, part)
		if err != nil {
			return nil, err
		}
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, model.OptionKey(o.ID))
	}
	return out, nil
}

func (p inputParser) Matrix(q *model.Question) (model.Answer, error) {
	out := model.MatrixAnswer{}
	if p.line == "" {
		return out, nil
	}
	for _, cell := range strings.Split(p.line, ";") {
		rowText, colsText, ok := strings.Cut(cell, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not row:column", ErrBadInput, strings.TrimSpace(cell))
		}
		row, err := index(rowText, len(q.Rows))
		if err != nil {
			return nil, fmt.Errorf("row: %w", err)
		}
		var cols []int
		seen := make(map[int]bool)
		for _, c := range strings.Split(colsText, ",") {
			col, err := index(c, len(q.Columns))
			if err != nil {
				return nil, fmt.Errorf("column: %w", err)
			}
			if seen[col] {
				continue
			}
			seen[col] = true
			cols = append(cols, col)
		}
		if !q.MultiSelectPerRow && len(cols) > 1 {
			return nil, fmt.Errorf("%w: row %d takes one column", ErrBadInput, row+1)
		}
		out[row] = cols
	}
	return out, nil
}

func (p inputParser) Section(q *model.Question) (model.Answer, error) {
	return nil, fmt.Errorf("%w: question %d is a section", model.ErrNotAnswerable, q.ID)
}

func optionAt(q *model.Question, text string) (model.Option, error) {
	i, err := index(text, len(q.Options))
	if err != nil {
		return model.Option{}, err
	}
	return q.Options[i], nil
}

// index parses a 1-based number and returns it zero-based.
func index(text string, n int) (int, error) {
	text = strings.TrimSpace(text)
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadInput, text)
	}
	if v < 1 || v > n {
		return 0, fmt.Errorf("%w: %d is not between 1 and %d", ErrBadInput, v, n)
	}
	return v - 1, nil
}

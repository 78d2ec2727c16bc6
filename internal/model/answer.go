package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Answer is a respondent's in-progress answer. Its concrete type depends on
// the question kind.
type Answer interface {
	// IsEmpty reports whether the answer counts as unanswered
	IsEmpty() bool
	isAnswer()
}

// TextAnswer answers a free_text question
type TextAnswer string

// ChoiceAnswer holds the selected option id of a single_choice question, string-encoded
type ChoiceAnswer string

// MultiChoiceAnswer holds the selected option ids of a multi_choice question, string-encoded
type MultiChoiceAnswer []string

// MatrixAnswer maps a row index to its selected column indices. Single-select
// rows hold exactly one column.
type MatrixAnswer map[int][]int

func (a TextAnswer) IsEmpty() bool        { return a == "" }
func (a ChoiceAnswer) IsEmpty() bool      { return a == "" }
func (a MultiChoiceAnswer) IsEmpty() bool { return len(a) == 0 }
func (a MatrixAnswer) IsEmpty() bool      { return len(a) == 0 }

func (TextAnswer) isAnswer()        {}
func (ChoiceAnswer) isAnswer()      {}
func (MultiChoiceAnswer) isAnswer() {}
func (MatrixAnswer) isAnswer()      {}

// IsEmpty treats a nil answer the same as an empty one
func IsEmpty(a Answer) bool {
	return a == nil || a.IsEmpty()
}

// OptionKey string-encodes an option id the way choice answers store it
func OptionKey(id int) string {
	return strconv.Itoa(id)
}

// SortedRows returns the answered row indices in ascending order
func (a MatrixAnswer) SortedRows() []int {
	rows := make([]int, 0, len(a))
	for r := range a {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// UnmarshalJSON accepts both row shapes: {"0": 2} and {"0": [1, 2]}.
func (a *MatrixAnswer) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(MatrixAnswer, len(raw))
	for key, val := range raw {
		row, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: matrix row %q", ErrAnswerShape, key)
		}
		val = bytes.TrimSpace(val)
		if len(val) > 0 && val[0] == '[' {
			var cols []int
			if err := json.Unmarshal(val, &cols); err != nil {
				return fmt.Errorf("%w: matrix row %d: %v", ErrAnswerShape, row, err)
			}
			out[row] = cols
			continue
		}
		var col int
		if err := json.Unmarshal(val, &col); err != nil {
			return fmt.Errorf("%w: matrix row %d: %v", ErrAnswerShape, row, err)
		}
		out[row] = []int{col}
	}
	*a = out
	return nil
}

// DecodeAnswer reads a raw JSON answer value for q. JSON null yields a nil answer.
func DecodeAnswer(q *Question, raw json.RawMessage) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	return Match[Answer](q, answerDecoder{raw: raw})
}

// EncodeAnswer writes a in the shape DecodeAnswer reads for q. Single-select
// matrix rows come out as a scalar column, {"0": 2}; everything else uses
// its default JSON form.
func EncodeAnswer(q *Question, a Answer) (json.RawMessage, error) {
	m, ok := a.(MatrixAnswer)
	if !ok || q.Kind != KindMatrix || q.MultiSelectPerRow {
		return json.Marshal(a)
	}
	rows := make(map[int]int, len(m))
	for row, cols := range m {
		if len(cols) > 0 {
			rows[row] = cols[0]
		}
	}
	return json.Marshal(rows)
}

type answerDecoder struct {
	raw json.RawMessage
}

func (d answerDecoder) FreeText(q *Question) (Answer, error) {
	var s string
	if err := json.Unmarshal(d.raw, &s); err != nil {
		return nil, fmt.Errorf("%w: question %d expects a string", ErrAnswerShape, q.ID)
	}
	return TextAnswer(s), nil
}

func (d answerDecoder) SingleChoice(q *Question) (Answer, error) {
	id, err := decodeOptionID(d.raw)
	if err != nil {
		return nil, fmt.Errorf("%w: question %d expects an option id", ErrAnswerShape, q.ID)
	}
	return ChoiceAnswer(id), nil
}

func (d answerDecoder) MultiChoice(q *Question) (Answer, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(d.raw, &items); err != nil {
		return nil, fmt.Errorf("%w: question %d expects a list of option ids", ErrAnswerShape, q.ID)
	}
	ids := make(MultiChoiceAnswer, 0, len(items))
	for _, item := range items {
		id, err := decodeOptionID(item)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d expects a list of option ids", ErrAnswerShape, q.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (d answerDecoder) Matrix(q *Question) (Answer, error) {
	var m MatrixAnswer
	if err := json.Unmarshal(d.raw, &m); err != nil {
		return nil, fmt.Errorf("question %d: %w", q.ID, err)
	}
	return m, nil
}

func (d answerDecoder) Section(q *Question) (Answer, error) {
	return nil, fmt.Errorf("%w: question %d is a section", ErrNotAnswerable, q.ID)
}

// decodeOptionID accepts "7" as well as 7.
func decodeOptionID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return OptionKey(n), nil
}

// CheckAnswer verifies that a fits q: right shape for the kind, and only
// referencing options, rows and columns that exist. A nil answer always fits.
func CheckAnswer(q *Question, a Answer) error {
	if a == nil {
		if q.IsSection() {
			return fmt.Errorf("%w: question %d is a section", ErrNotAnswerable, q.ID)
		}
		return nil
	}
	_, err := Match[struct{}](q, answerChecker{answer: a})
	return err
}

type answerChecker struct {
	answer Answer
}

func (c answerChecker) FreeText(q *Question) (struct{}, error) {
	if _, ok := c.answer.(TextAnswer); !ok {
		return struct{}{}, shapeError(q, c.answer)
	}
	return struct{}{}, nil
}

func (c answerChecker) SingleChoice(q *Question) (struct{}, error) {
	a, ok := c.answer.(ChoiceAnswer)
	if !ok {
		return struct{}{}, shapeError(q, c.answer)
	}
	if a.IsEmpty() {
		return struct{}{}, nil
	}
	return struct{}{}, checkOption(q, string(a))
}

func (c answerChecker) MultiChoice(q *Question) (struct{}, error) {
	a, ok := c.answer.(MultiChoiceAnswer)
	if !ok {
		return struct{}{}, shapeError(q, c.answer)
	}
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		if err := checkOption(q, id); err != nil {
			return struct{}{}, err
		}
		if seen[id] {
			return struct{}{}, fmt.Errorf("%w: question %d: option %s selected twice", ErrAnswerShape, q.ID, id)
		}
		seen[id] = true
	}
	return struct{}{}, nil
}

func (c answerChecker) Matrix(q *Question) (struct{}, error) {
	a, ok := c.answer.(MatrixAnswer)
	if !ok {
		return struct{}{}, shapeError(q, c.answer)
	}
	for row, cols := range a {
		if row < 0 || row >= len(q.Rows) {
			return struct{}{}, fmt.Errorf("%w: question %d has no row %d", ErrAnswerShape, q.ID, row)
		}
		if !q.MultiSelectPerRow && len(cols) > 1 {
			return struct{}{}, fmt.Errorf("%w: question %d allows one column per row", ErrAnswerShape, q.ID)
		}
		seen := make(map[int]bool, len(cols))
		for _, col := range cols {
			if col < 0 || col >= len(q.Columns) {
				return struct{}{}, fmt.Errorf("%w: question %d has no column %d", ErrAnswerShape, q.ID, col)
			}
			if seen[col] {
				return struct{}{}, fmt.Errorf("%w: question %d row %d: column %d selected twice", ErrAnswerShape, q.ID, row, col)
			}
			seen[col] = true
		}
	}
	return struct{}{}, nil
}

func (c answerChecker) Section(q *Question) (struct{}, error) {
	return struct{}{}, fmt.Errorf("%w: question %d is a section", ErrNotAnswerable, q.ID)
}

func checkOption(q *Question, key string) error {
	id, err := strconv.Atoi(key)
	if err != nil {
		return fmt.Errorf("%w: question %d: option id %q is not numeric", ErrAnswerShape, q.ID, key)
	}
	if _, ok := q.Option(id); !ok {
		return fmt.Errorf("%w: question %d has no option %d", ErrAnswerShape, q.ID, id)
	}
	return nil
}

func shapeError(q *Question, a Answer) error {
	return fmt.Errorf("%w: %T given for %s question %d", ErrAnswerShape, a, q.Kind, q.ID)
}

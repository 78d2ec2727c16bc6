package engine

import (
	"fmt"
	"strconv"

	"surveyflow/internal/model"
)

// Serialize flattens the store into wire answers, one per discrete fact;
// a repeated option or matrix cell is sent once.
// Questions without an answer, or with an empty one, contribute nothing;
// answer keys for questions outside the list are ignored.
func Serialize(answers *AnswerStore, questions []model.Question) ([]model.WireAnswer, error) {
	out := make([]model.WireAnswer, 0, answers.Len())
	for i := range questions {
		q := &questions[i]
		a, ok := answers.Get(q.ID)
		if !ok || model.IsEmpty(a) {
			continue
		}
		entries, err := model.Match[[]model.WireAnswer](q, wireEncoder{answer: a})
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// MatrixCellText is the textual composite a matrix cell is submitted as.
// The receiving backend has no native matrix storage.
func MatrixCellText(row, col int) string {
	return fmt.Sprintf("Row %d - Column %d", row, col)
}

type wireEncoder struct {
	answer model.Answer
}

func (e wireEncoder) FreeText(q *model.Question) ([]model.WireAnswer, error) {
	a, ok := e.answer.(model.TextAnswer)
	if !ok {
		return nil, encodeError(q, e.answer)
	}
	return []model.WireAnswer{model.TextEntry(q.ID, string(a))}, nil
}

func (e wireEncoder) SingleChoice(q *model.Question) ([]model.WireAnswer, error) {
	a, ok := e.answer.(model.ChoiceAnswer)
	if !ok {
		return nil, encodeError(q, e.answer)
	}
	id, err := strconv.Atoi(string(a))
	if err != nil {
		return nil, fmt.Errorf("%w: question %d: option id %q", model.ErrAnswerShape, q.ID, string(a))
	}
	return []model.WireAnswer{model.OptionEntry(q.ID, id)}, nil
}

func (e wireEncoder) MultiChoice(q *model.Question) ([]model.WireAnswer, error) {
	a, ok := e.answer.(model.MultiChoiceAnswer)
	if !ok {
		return nil, encodeError(q, e.answer)
	}
	entries := make([]model.WireAnswer, 0, len(a))
	seen := make(map[int]bool, len(a))
	for _, key := range a {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: option id %q", model.ErrAnswerShape, q.ID, key)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		entries = append(entries, model.OptionEntry(q.ID, id))
	}
	return entries, nil
}

// Matrix emits one entry per selected cell, rows ascending. Single- and
// multi-select rows share the format.
func (e wireEncoder) Matrix(q *model.Question) ([]model.WireAnswer, error) {
	a, ok := e.answer.(model.MatrixAnswer)
	if !ok {
		return nil, encodeError(q, e.answer)
	}
	var entries []model.WireAnswer
	for _, row := range a.SortedRows() {
		seen := make(map[int]bool, len(a[row]))
		for _, col := range a[row] {
			if seen[col] {
				continue
			}
			seen[col] = true
			entries = append(entries, model.TextEntry(q.ID, MatrixCellText(row, col)))
		}
	}
	return entries, nil
}

func (e wireEncoder) Section(q *model.Question) ([]model.WireAnswer, error) {
	return nil, nil
}

func encodeError(q *model.Question, a model.Answer) error {
	return fmt.Errorf("%w: %T stored for %s question %d", model.ErrAnswerShape, a, q.Kind, q.ID)
}

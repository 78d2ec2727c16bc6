package render

import (
	"fmt"
	"io"
	"strings"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// WriteView prints the current page of a session as plain text. Answerable
// questions are numbered Q1, Q2... within the page; see PageQuestion.
func WriteView(w io.Writer, v engine.View) error {
	var b strings.Builder

	switch v.State {
	case engine.StateCompleted:
		b.WriteString("Survey submitted.\n")
		if v.ClosingMessage != "" {
			b.WriteString(v.ClosingMessage + "\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	case engine.StateSubmitting:
		b.WriteString("Submitting...\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if v.Page == nil {
		_, err := io.WriteString(w, "This survey has no questions.\n")
		return err
	}

	header := fmt.Sprintf("Page %d of %d", v.PageNumber, v.PageCount)
	if v.Page.Title != "" {
		header += " - " + v.Page.Title
	}
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("=", len(header)) + "\n")
	fmt.Fprintf(&b, "Progress: %s\n\n", v.Progress.Display)

	n := 0
	for i := range v.Page.Questions {
		q := &v.Page.Questions[i]
		if !q.IsSection() {
			n++
			fmt.Fprintf(&b, "Q%d. ", n)
		}
		body, err := Question(q, v.Answers[q.ID])
		if err != nil {
			return err
		}
		b.WriteString(body)
		if msg, ok := v.Errors[q.ID]; ok {
			fmt.Fprintf(&b, "   ! %s\n", msg)
		}
		b.WriteString("\n")
	}

	if v.State == engine.StateFailed && v.LastError != "" {
		fmt.Fprintf(&b, "Submission failed: %s\nSubmit again to retry.\n", v.LastError)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Question renders one question with its current answer.
func Question(q *model.Question, a model.Answer) (string, error) {
	return model.Match[string](q, textRenderer{answer: a})
}

type textRenderer struct {
	answer model.Answer
}

func title(q *model.Question) string {
	if q.Required {
		return q.Text + " *"
	}
	return q.Text
}

func (r textRenderer) FreeText(q *model.Question) (string, error) {
	current, _ := r.answer.(model.TextAnswer)
	return fmt.Sprintf("%s\n   > %s\n", title(q), string(current)), nil
}

func (r textRenderer) SingleChoice(q *model.Question) (string, error) {
	current, _ := r.answer.(model.ChoiceAnswer)
	return renderOptions(q, func(key string) bool { return key == string(current) }), nil
}

func (r textRenderer) MultiChoice(q *model.Question) (string, error) {
	current, _ := r.answer.(model.MultiChoiceAnswer)
	selected := make(map[string]bool, len(current))
	for _, key := range current {
		selected[key] = true
	}
	return renderOptions(q, func(key string) bool { return selected[key] }), nil
}

func (r textRenderer) Matrix(q *model.Question) (string, error) {
	current, _ := r.answer.(model.MatrixAnswer)

	var b strings.Builder
	b.WriteString(title(q) + "\n")
	cols := make([]string, len(q.Columns))
	for c, col := range q.Columns {
		cols[c] = fmt.Sprintf("%d=%s", c+1, col)
	}
	fmt.Fprintf(&b, "   columns: %s\n", strings.Join(cols, ", "))
	for row, label := range q.Rows {
		var picked []string
		for _, c := range current[row] {
			if c >= 0 && c < len(q.Columns) {
				picked = append(picked, q.Columns[c])
			}
		}
		fmt.Fprintf(&b, "   %d. %s: %s\n", row+1, label, strings.Join(picked, ", "))
	}
	return b.String(), nil
}

func (r textRenderer) Section(q *model.Question) (string, error) {
	return fmt.Sprintf("== %s ==\n", q.Text), nil
}

func renderOptions(q *model.Question, selected func(key string) bool) string {
	var b strings.Builder
	b.WriteString(title(q) + "\n")
	for i, o := range q.Options {
		mark := " "
		if selected(model.OptionKey(o.ID)) {
			mark = "x"
		}
		fmt.Fprintf(&b, "   [%s] %d. %s\n", mark, i+1, o.Text)
	}
	return b.String()
}

// PageQuestion returns the n-th answerable question of a page, counting
// from 1 as WriteView numbers them.
func PageQuestion(page *model.Page, n int) (*model.Question, bool) {
	if page == nil {
		return nil, false
	}
	for i := range page.Questions {
		q := &page.Questions[i]
		if q.IsSection() {
			continue
		}
		n--
		if n == 0 {
			return q, true
		}
	}
	return nil, false
}

package engine

import "surveyflow/internal/model"

// ValidatePage returns a message for every required question on the page
// whose answer is empty. An empty map means the page is valid.
func ValidatePage(page model.Page, answers *AnswerStore) map[int]string {
	errs := make(map[int]string)
	for i := range page.Questions {
		q := &page.Questions[i]
		a, _ := answers.Get(q.ID)
		missing, err := model.Match[bool](q, requiredCheck{answer: a})
		if err != nil || !missing {
			continue
		}
		errs[q.ID] = errorMessage(q)
	}
	return errs
}

func errorMessage(q *model.Question) string {
	if q.ErrorMessage != "" {
		return q.ErrorMessage
	}
	return model.DefaultErrorMessage
}

type requiredCheck struct {
	answer model.Answer
}

func (c requiredCheck) missing(q *model.Question) bool {
	return q.Required && model.IsEmpty(c.answer)
}

func (c requiredCheck) FreeText(q *model.Question) (bool, error)     { return c.missing(q), nil }
func (c requiredCheck) SingleChoice(q *model.Question) (bool, error) { return c.missing(q), nil }
func (c requiredCheck) MultiChoice(q *model.Question) (bool, error)  { return c.missing(q), nil }
func (c requiredCheck) Matrix(q *model.Question) (bool, error)       { return c.missing(q), nil }

// Sections carry no required semantics.
func (c requiredCheck) Section(q *model.Question) (bool, error) { return false, nil }

package engine

import (
	"context"
	"encoding/json"
	"sync"

	"surveyflow/internal/model"
)

// State is the navigator's lifecycle state
type State string

const (
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed" // Last submission failed; still on the last page
)

// Outcome describes what an Advance call did
type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomeBlocked   Outcome = "blocked" // Validation failed, error map populated
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Submitter delivers a finished survey to the backend
type Submitter interface {
	Submit(ctx context.Context, req *model.SubmitRequest) error
}

// Respondent identifies who is answering and in which context
type Respondent struct {
	ID               int
	ContextReference string
	ContextMetadata  map[string]interface{}
}

// Navigator is the state machine of one survey-taking session. It owns the
// answer store, the error map and the current page.
type Navigator struct {
	mu sync.Mutex

	survey     *model.Survey
	pages      []model.Page
	questions  []model.Question
	index      map[int]*model.Question
	store      *AnswerStore
	respondent Respondent
	submitter  Submitter

	page     int
	state    State
	inFlight bool
	lastErr  error
}

// NewNavigator paginates the survey and starts on the first page.
func NewNavigator(survey *model.Survey, respondent Respondent, submitter Submitter) *Navigator {
	pages := BuildPages(survey.Questions, survey.Settings.Pagination)

	var questions []model.Question
	for _, p := range pages {
		questions = append(questions, p.Questions...)
	}
	index := make(map[int]*model.Question, len(questions))
	for i := range questions {
		index[questions[i].ID] = &questions[i]
	}

	return &Navigator{
		survey:     survey,
		pages:      pages,
		questions:  questions,
		index:      index,
		store:      NewAnswerStore(),
		respondent: respondent,
		submitter:  submitter,
		state:      StateInProgress,
	}
}

// Survey returns the definition the navigator runs
func (n *Navigator) Survey() *model.Survey {
	return n.survey
}

// Pages returns the survey's pages
func (n *Navigator) Pages() []model.Page {
	return n.pages
}

// Question looks up an answerable question by id
func (n *Navigator) Question(id int) (*model.Question, bool) {
	q, ok := n.index[id]
	return q, ok
}

// SetAnswer records an answer for a question on any page.
func (n *Navigator) SetAnswer(questionID int, a model.Answer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.checkMutable(); err != nil {
		return err
	}
	q, ok := n.index[questionID]
	if !ok {
		return ErrUnknownQuestion
	}
	if err := model.CheckAnswer(q, a); err != nil {
		return err
	}
	if n.state == StateFailed {
		n.state = StateInProgress
	}
	n.store.Set(questionID, a)
	return nil
}

// Advance moves to the next page, or submits from the last one.
//
// Before the last page, validation only runs when skipping is disallowed.
// The last page is always validated, and only a valid last page is
// submitted. A failed submission leaves the navigator on the last page in
// StateFailed; calling Advance again retries.
func (n *Navigator) Advance(ctx context.Context) (Outcome, error) {
	n.mu.Lock()
	if err := n.checkMutable(); err != nil {
		n.mu.Unlock()
		return "", err
	}
	if len(n.pages) == 0 {
		n.mu.Unlock()
		return "", ErrNoPages
	}
	n.state = StateInProgress

	current := n.pages[n.page]
	if n.page < len(n.pages)-1 {
		if !n.survey.Settings.SkippingAllowed() {
			errs := ValidatePage(current, n.store)
			n.store.ReplaceErrors(errs)
			if len(errs) > 0 {
				n.mu.Unlock()
				return OutcomeBlocked, nil
			}
		}
		n.page++
		n.mu.Unlock()
		return OutcomeMoved, nil
	}

	errs := ValidatePage(current, n.store)
	n.store.ReplaceErrors(errs)
	if len(errs) > 0 {
		n.mu.Unlock()
		return OutcomeBlocked, nil
	}

	req, err := n.submission()
	if err != nil {
		n.mu.Unlock()
		return "", err
	}
	n.state = StateSubmitting
	n.inFlight = true
	n.mu.Unlock()

	submitErr := n.submitter.Submit(ctx, req)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.inFlight = false
	if submitErr != nil {
		n.state = StateFailed
		n.lastErr = &SubmissionError{Err: submitErr}
		return OutcomeFailed, n.lastErr
	}
	n.state = StateCompleted
	n.lastErr = nil
	return OutcomeCompleted, nil
}

// Retreat moves to the previous page without validating. It reports
// whether the page changed.
func (n *Navigator) Retreat() (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.checkMutable(); err != nil {
		return false, err
	}
	if n.page == 0 {
		return false, nil
	}
	n.state = StateInProgress
	n.page--
	return true, nil
}

// State returns the current lifecycle state
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// PageIndex returns the zero-based current page
func (n *Navigator) PageIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.page
}

// Progress computes progress with the survey's display mode
func (n *Navigator) Progress() Progress {
	n.mu.Lock()
	defer n.mu.Unlock()
	return ComputeProgress(n.pages, n.store, n.survey.Settings.ProgressDisplay)
}

// View is a render-ready snapshot of the navigator
type View struct {
	State           State                `json:"state"`
	PageNumber      int                  `json:"page_number"`
	PageCount       int                  `json:"page_count"`
	IsLastPage      bool                 `json:"is_last_page"`
	SkippingAllowed bool                 `json:"skipping_allowed"`
	Page            *model.Page          `json:"page,omitempty"`
	Answers         map[int]model.Answer `json:"answers"`
	Errors          map[int]string       `json:"errors"`
	Progress        Progress             `json:"progress"`
	LastError       string               `json:"last_error,omitempty"`
	ClosingMessage  string               `json:"closing_message,omitempty"`
}

// MarshalJSON writes each answer in the shape the answer endpoint accepts.
func (v View) MarshalJSON() ([]byte, error) {
	type plain View
	answers := make(map[int]json.RawMessage, len(v.Answers))
	for id, a := range v.Answers {
		var q *model.Question
		if v.Page != nil {
			for i := range v.Page.Questions {
				if v.Page.Questions[i].ID == id {
					q = &v.Page.Questions[i]
					break
				}
			}
		}
		var (
			raw json.RawMessage
			err error
		)
		if q != nil {
			raw, err = model.EncodeAnswer(q, a)
		} else {
			raw, err = json.Marshal(a)
		}
		if err != nil {
			return nil, err
		}
		answers[id] = raw
	}
	return json.Marshal(struct {
		plain
		Answers map[int]json.RawMessage `json:"answers"`
	}{plain(v), answers})
}

// View snapshots the current page with its answers and errors.
func (n *Navigator) View() View {
	n.mu.Lock()
	defer n.mu.Unlock()

	v := View{
		State:           n.state,
		PageCount:       len(n.pages),
		SkippingAllowed: n.survey.Settings.SkippingAllowed(),
		Answers:         make(map[int]model.Answer),
		Errors:          n.store.Errors(),
		Progress:        ComputeProgress(n.pages, n.store, n.survey.Settings.ProgressDisplay),
	}
	if n.lastErr != nil {
		v.LastError = n.lastErr.Error()
	}
	if n.state == StateCompleted {
		v.ClosingMessage = n.survey.Settings.ClosingMessage
	}
	if len(n.pages) == 0 {
		return v
	}

	page := n.pages[n.page]
	v.Page = &page
	v.PageNumber = n.page + 1
	v.IsLastPage = n.page == len(n.pages)-1
	for _, q := range page.Questions {
		if a, ok := n.store.Get(q.ID); ok {
			v.Answers[q.ID] = a
		}
	}
	return v
}

func (n *Navigator) checkMutable() error {
	if n.state == StateCompleted {
		return ErrCompleted
	}
	if n.inFlight {
		return ErrSubmissionInFlight
	}
	return nil
}

func (n *Navigator) submission() (*model.SubmitRequest, error) {
	responses, err := Serialize(n.store, n.questions)
	if err != nil {
		return nil, err
	}
	return &model.SubmitRequest{
		RespondentID:     n.respondent.ID,
		SurveyID:         n.survey.ID,
		ContextReference: n.respondent.ContextReference,
		ContextMetadata:  n.respondent.ContextMetadata,
		Responses:        responses,
	}, nil
}

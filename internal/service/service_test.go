package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"surveyflow/internal/client"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	calls   int32
	surveys map[int]*model.Survey
	err     error
	delay   time.Duration

	// When set, GetSurvey signals started and waits for gate.
	started chan struct{}
	gate    chan struct{}
}

func (f *fakeSource) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.surveys[id]
	if !ok {
		return nil, ErrSurveyNotFound
	}
	copied := *s
	copied.Questions = append([]model.Question(nil), s.Questions...)
	return &copied, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[int]*model.Survey
}

func (c *memoryCache) Get(ctx context.Context, id int) (*model.Survey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id], nil
}

func (c *memoryCache) Set(ctx context.Context, s *model.Survey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.ID] = s
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

type recordedEvent struct {
	session string
	kind    string
}

type recorder struct {
	mu           sync.Mutex
	events       []recordedEvent
	disconnected []string
}

func (r *recorder) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{sessionID, msgType})
}

func (r *recorder) DisconnectSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected = append(r.disconnected, sessionID)
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.kind)
	}
	return out
}

type stubSubmitter struct {
	mu       sync.Mutex
	err      error
	requests []*model.SubmitRequest
}

func (s *stubSubmitter) Submit(ctx context.Context, req *model.SubmitRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.err
}

func feedbackSurvey() *model.Survey {
	return &model.Survey{
		ID:   4,
		Name: "Feedback",
		Settings: model.SurveySettings{
			Pagination:     "por_seccion",
			ClosingMessage: "Gracias",
		},
		Questions: []model.Question{
			{ID: 10, Text: "General", Kind: "seccion", Position: 1},
			{ID: 1, Text: "Score", Kind: "opcion_unica", Position: 2, Required: true,
				Options: []model.Option{{ID: 7, Text: "Good", Position: 1}, {ID: 8, Text: "Bad", Position: 2}}},
			{ID: 11, Text: "Details", Kind: "seccion", Position: 3},
			{ID: 2, Text: "Rate", Kind: "matriz", Position: 4,
				Rows: []string{"Punctuality", "Clarity"}, Columns: []string{"Low", "Medium", "High"}},
			{ID: 3, Text: "Comments", Kind: "texto_libre", Position: 5},
		},
	}
}

func TestSurveyService_LoadNormalizesAndCaches(t *testing.T) {
	src := &fakeSource{surveys: map[int]*model.Survey{4: feedbackSurvey()}}
	c := &memoryCache{entries: map[int]*model.Survey{}}
	svc := NewSurveyService(src, c, zap.NewNop())

	s, err := svc.Load(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, model.PaginationPerSection, s.Settings.Pagination)
	assert.Equal(t, model.KindMatrix, s.Questions[3].Kind)
	assert.Equal(t, model.DefaultErrorMessage, s.Questions[1].ErrorMessage)

	_, err = svc.Load(context.Background(), 4)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&src.calls), "second load served from cache")

	_, pages, err := svc.Pages(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "General", pages[0].Title)
	assert.Equal(t, "Details", pages[1].Title)
}

func TestSurveyService_CoalescesConcurrentLoads(t *testing.T) {
	src := &fakeSource{surveys: map[int]*model.Survey{4: feedbackSurvey()}, delay: 50 * time.Millisecond}
	svc := NewSurveyService(src, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Load(context.Background(), 4)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Less(t, atomic.LoadInt32(&src.calls), int32(8))
}

func TestSurveyService_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := &fakeSource{
		surveys: map[int]*model.Survey{4: feedbackSurvey()},
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	svc := NewSurveyService(src, nil, zap.NewNop())

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.Load(leaderCtx, 4)
		leaderErr <- err
	}()
	<-src.started

	type result struct {
		survey *model.Survey
		err    error
	}
	follower := make(chan result, 1)
	go func() {
		survey, err := svc.Load(context.Background(), 4)
		follower <- result{survey, err}
	}()

	cancel()
	err := <-leaderErr
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, context.Canceled)

	close(src.gate)
	res := <-follower
	require.NoError(t, res.err)
	assert.Equal(t, 4, res.survey.ID)
	assert.LessOrEqual(t, atomic.LoadInt32(&src.calls), int32(2))
}

func TestSurveyService_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      *fakeSource
		id       int
		notFound bool
		target   error
	}{
		{"missing", &fakeSource{surveys: map[int]*model.Survey{}}, 1, true, ErrSurveyNotFound},
		{"upstream 404", &fakeSource{err: client.ErrNotFound}, 1, true, client.ErrNotFound},
		{"upstream down", &fakeSource{err: errors.New("connection refused")}, 1, false, nil},
		{"only sections", &fakeSource{surveys: map[int]*model.Survey{1: {Questions: []model.Question{{ID: 1, Kind: model.KindSection}}}}}, 1, false, engine.ErrNoPages},
		{"duplicate ids", &fakeSource{surveys: map[int]*model.Survey{1: {Questions: []model.Question{{ID: 1, Kind: model.KindFreeText}, {ID: 1, Kind: model.KindFreeText}}}}}, 1, false, model.ErrInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSurveyService(tt.src, nil, zap.NewNop())
			_, err := svc.Load(context.Background(), tt.id)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.id, loadErr.SurveyID)
			assert.Equal(t, tt.notFound, loadErr.NotFound())
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestAuthService(t *testing.T) {
	auth := NewAuthService([]byte("secret"), time.Hour)

	token, err := auth.GenerateSessionToken("abc", 4)
	require.NoError(t, err)

	claims, err := auth.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.SessionID)
	assert.Equal(t, 4, claims.SurveyID)

	_, err = NewAuthService([]byte("other"), time.Hour).ValidateSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAuthService([]byte("secret"), -time.Minute).GenerateSessionToken("abc", 4)
	require.NoError(t, err)
	_, err = auth.ValidateSessionToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func newSessionService(t *testing.T, sub engine.Submitter) (*SessionService, *recorder) {
	t.Helper()
	src := &fakeSource{surveys: map[int]*model.Survey{4: feedbackSurvey()}}
	surveys := NewSurveyService(src, nil, zap.NewNop())
	svc := NewSessionService(surveys, sub, NewAuthService([]byte("secret"), time.Hour), time.Hour, zap.NewNop())
	rec := &recorder{}
	svc.SetBroadcaster(rec)
	return svc, rec
}

func TestSessionService_FullFlow(t *testing.T) {
	sub := &stubSubmitter{}
	svc, rec := newSessionService(t, sub)
	ctx := context.Background()

	started, err := svc.Start(ctx, 4, model.StartSessionRequest{RespondentID: 12, ContextMetadata: map[string]interface{}{"course": "go-101"}})
	require.NoError(t, err)
	assert.NotEmpty(t, started.Token)
	assert.Equal(t, 1, started.View.PageNumber)
	assert.Equal(t, 2, started.View.PageCount)

	_, err = svc.Answer(started.SessionID, 1, json.RawMessage(`7`))
	require.NoError(t, err)

	outcome, view, err := svc.Next(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeMoved, outcome)
	assert.Equal(t, 2, view.PageNumber)

	_, err = svc.Answer(started.SessionID, 2, json.RawMessage(`{"0": 2, "1": 1}`))
	require.NoError(t, err)

	outcome, view, err = svc.Next(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeCompleted, outcome)
	assert.Equal(t, "Gracias", view.ClosingMessage)

	require.Len(t, sub.requests, 1)
	req := sub.requests[0]
	assert.Equal(t, 12, req.RespondentID)
	assert.Equal(t, "session-"+started.SessionID, req.ContextReference)
	assert.Equal(t, "go-101", req.ContextMetadata["course"])
	assert.Len(t, req.Responses, 3)

	assert.Equal(t, []string{
		EventAnswerSaved,
		EventPageChanged,
		EventAnswerSaved,
		EventSubmissionStarted,
		EventSubmissionCompleted,
	}, rec.kinds())
}

func TestSessionService_ValidationAndFailure(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("upstream returned 500")}
	svc, rec := newSessionService(t, sub)
	ctx := context.Background()

	started, err := svc.Start(ctx, 4, model.StartSessionRequest{RespondentID: 1})
	require.NoError(t, err)
	id := started.SessionID

	// Skipping is allowed, and only the last page is validated before submitting.
	outcome, _, err := svc.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeMoved, outcome)

	outcome, view, err := svc.Next(ctx, id)
	var subErr *engine.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, engine.OutcomeFailed, outcome)
	assert.Equal(t, engine.StateFailed, view.State)
	assert.Equal(t, 2, view.PageNumber)
	assert.Contains(t, rec.kinds(), EventSubmissionFailed)

	moved, view, err := svc.Back(id)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, 1, view.PageNumber)

	_, err = svc.Answer(id, 1, json.RawMessage(`"9"`))
	assert.ErrorIs(t, err, model.ErrAnswerShape)
	_, err = svc.Answer(id, 10, json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, engine.ErrUnknownQuestion)
	_, err = svc.Answer(id, 1, json.RawMessage(`8`))
	require.NoError(t, err)

	sub.mu.Lock()
	sub.err = nil
	sub.mu.Unlock()

	_, _, err = svc.Next(ctx, id)
	require.NoError(t, err)
	outcome, _, err = svc.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeCompleted, outcome)
	assert.Len(t, sub.requests, 2)
}

func TestSessionService_BlocksOnRequiredWhenSkippingDisallowed(t *testing.T) {
	survey := feedbackSurvey()
	skip := false
	survey.Settings.AllowSkipping = &skip
	src := &fakeSource{surveys: map[int]*model.Survey{4: survey}}
	svc := NewSessionService(NewSurveyService(src, nil, zap.NewNop()), &stubSubmitter{}, nil, time.Hour, zap.NewNop())
	rec := &recorder{}
	svc.SetBroadcaster(rec)

	started, err := svc.Start(context.Background(), 4, model.StartSessionRequest{})
	require.NoError(t, err)
	assert.Empty(t, started.Token, "no auth service, no token")

	outcome, view, err := svc.Next(context.Background(), started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeBlocked, outcome)
	assert.Equal(t, map[int]string{1: model.DefaultErrorMessage}, view.Errors)
	assert.Equal(t, []string{EventValidationFailed}, rec.kinds())
}

func TestSessionService_UnknownSession(t *testing.T) {
	svc, _ := newSessionService(t, &stubSubmitter{})

	_, err := svc.View("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = svc.Next(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Discard("nope"), ErrSessionNotFound)
}

func TestSessionService_StartLoadError(t *testing.T) {
	svc, _ := newSessionService(t, &stubSubmitter{})

	_, err := svc.Start(context.Background(), 404, model.StartSessionRequest{})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.True(t, loadErr.NotFound())
	assert.Zero(t, svc.Count())
}

func TestSessionService_DiscardAndSweep(t *testing.T) {
	svc, rec := newSessionService(t, &stubSubmitter{})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Start(context.Background(), 4, model.StartSessionRequest{})
	require.NoError(t, err)
	b, err := svc.Start(context.Background(), 4, model.StartSessionRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Discard(a.SessionID))
	assert.Equal(t, 1, svc.Count())

	now = now.Add(30 * time.Minute)
	assert.Zero(t, svc.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, svc.Sweep())
	assert.Zero(t, svc.Count())

	assert.Equal(t, []string{a.SessionID, b.SessionID}, rec.disconnected)
}

func TestSessionService_RunJanitorStops(t *testing.T) {
	svc, _ := newSessionService(t, &stubSubmitter{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error)
	go func() { done <- svc.RunJanitor(ctx, time.Millisecond) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRepoBackends(t *testing.T) {
	ctx := context.Background()

	_, err := NewRepoSource(&fakeSurveyRepo{}).GetSurvey(ctx, 1)
	assert.ErrorIs(t, err, ErrSurveyNotFound)

	repo := &fakeSurveyRepo{surveys: map[int]*model.Survey{2: {ID: 2, Name: "stored"}}}
	s, err := NewRepoSource(repo).GetSurvey(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "stored", s.Name)

	responses := &fakeResponseRepo{}
	require.NoError(t, NewRepoSubmitter(responses).Submit(ctx, &model.SubmitRequest{SurveyID: 2, ContextReference: "session-x"}))
	require.Len(t, responses.created, 1)
	assert.Equal(t, "session-x", responses.created[0].ContextReference)

	responses.err = errors.New("write concern")
	assert.Error(t, NewRepoSubmitter(responses).Submit(ctx, &model.SubmitRequest{}))
}

type fakeSurveyRepo struct {
	surveys map[int]*model.Survey
}

func (f *fakeSurveyRepo) GetByID(ctx context.Context, id int) (*model.Survey, error) {
	return f.surveys[id], nil
}

func (f *fakeSurveyRepo) List(ctx context.Context) ([]*model.Survey, error) { return nil, nil }
func (f *fakeSurveyRepo) Upsert(ctx context.Context, s *model.Survey) error { return nil }
func (f *fakeSurveyRepo) Delete(ctx context.Context, id int) error          { return nil }

type fakeResponseRepo struct {
	created []*model.Submission
	err     error
}

func (f *fakeResponseRepo) Create(ctx context.Context, s *model.Submission) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, s)
	return nil
}

func (f *fakeResponseRepo) GetBySurveyID(ctx context.Context, id int) ([]*model.Submission, error) {
	return nil, nil
}

func (f *fakeResponseRepo) GetByContextReference(ctx context.Context, ref string) (*model.Submission, error) {
	return nil, nil
}

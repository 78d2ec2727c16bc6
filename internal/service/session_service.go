package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// SurveyLoader is the part of SurveyService sessions depend on
type SurveyLoader interface {
	Load(ctx context.Context, id int) (*model.Survey, error)
}

// Session is one respondent taking one survey
type Session struct {
	ID           string
	SurveyID     int
	RespondentID int
	Navigator    *engine.Navigator
	CreatedAt    time.Time

	lastSeen time.Time // guarded by SessionService.mu
}

// StartResult is returned when a session starts
type StartResult struct {
	SessionID string      `json:"session_id"`
	Token     string      `json:"token"`
	View      engine.View `json:"view"`
}

// SessionService owns the live sessions and drives their navigators
type SessionService struct {
	surveys     SurveyLoader
	submitter   engine.Submitter
	authSvc     *AuthService
	broadcaster Broadcaster
	log         *zap.Logger
	maxIdle     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionService creates a new session service
func NewSessionService(
	surveys SurveyLoader,
	submitter engine.Submitter,
	authSvc *AuthService,
	maxIdle time.Duration,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		surveys:     surveys,
		submitter:   submitter,
		authSvc:     authSvc,
		broadcaster: nopBroadcaster{},
		log:         log.Named("sessions"),
		maxIdle:     maxIdle,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start loads the survey and opens a session on its first page.
func (s *SessionService) Start(ctx context.Context, surveyID int, req model.StartSessionRequest) (*StartResult, error) {
	survey, err := s.surveys.Load(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	respondent := engine.Respondent{
		ID:               req.RespondentID,
		ContextReference: "session-" + id,
		ContextMetadata:  req.ContextMetadata,
	}
	if respondent.ContextMetadata == nil {
		respondent.ContextMetadata = map[string]interface{}{}
	}

	sess := &Session{
		ID:           id,
		SurveyID:     surveyID,
		RespondentID: req.RespondentID,
		CreatedAt:    s.now(),
		lastSeen:     s.now(),
	}
	sess.Navigator = engine.NewNavigator(survey, respondent, &notifyingSubmitter{
		next: s.submitter,
		onStart: func() {
			s.broadcaster.BroadcastToSession(id, EventSubmissionStarted, map[string]interface{}{"survey_id": surveyID})
		},
	})

	var token string
	if s.authSvc != nil {
		token, err = s.authSvc.GenerateSessionToken(id, surveyID)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info("session started",
		zap.String("session_id", id),
		zap.Int("survey_id", surveyID),
		zap.Int("respondent_id", req.RespondentID))

	return &StartResult{SessionID: id, Token: token, View: sess.Navigator.View()}, nil
}

// Get returns a live session and marks it as active
func (s *SessionService) Get(sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// View returns the session's current page
func (s *SessionService) View(sessionID string) (engine.View, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return engine.View{}, err
	}
	return sess.Navigator.View(), nil
}

// Answer decodes a raw JSON answer value and records it. JSON null clears
// the answer.
func (s *SessionService) Answer(sessionID string, questionID int, raw json.RawMessage) (engine.View, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return engine.View{}, err
	}
	q, ok := sess.Navigator.Question(questionID)
	if !ok {
		return engine.View{}, engine.ErrUnknownQuestion
	}
	answer, err := model.DecodeAnswer(q, raw)
	if err != nil {
		return engine.View{}, err
	}
	return s.SetAnswer(sess, questionID, answer)
}

// SetAnswer records an already decoded answer
func (s *SessionService) SetAnswer(sess *Session, questionID int, answer model.Answer) (engine.View, error) {
	if err := sess.Navigator.SetAnswer(questionID, answer); err != nil {
		return engine.View{}, err
	}

	view := sess.Navigator.View()
	s.broadcaster.BroadcastToSession(sess.ID, EventAnswerSaved, map[string]interface{}{
		"question_id": questionID,
		"progress":    view.Progress,
	})
	return view, nil
}

// Next advances the session, submitting from the last page.
func (s *SessionService) Next(ctx context.Context, sessionID string) (engine.Outcome, engine.View, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return "", engine.View{}, err
	}

	outcome, err := sess.Navigator.Advance(ctx)
	view := sess.Navigator.View()

	var subErr *engine.SubmissionError
	switch {
	case errors.As(err, &subErr):
		s.log.Warn("submission failed", zap.String("session_id", sess.ID), zap.Error(err))
		s.broadcaster.BroadcastToSession(sess.ID, EventSubmissionFailed, map[string]interface{}{"error": err.Error()})
		return outcome, view, err
	case err != nil:
		return outcome, view, err
	}

	switch outcome {
	case engine.OutcomeBlocked:
		s.broadcaster.BroadcastToSession(sess.ID, EventValidationFailed, map[string]interface{}{"errors": view.Errors})
	case engine.OutcomeMoved:
		s.broadcaster.BroadcastToSession(sess.ID, EventPageChanged, pageEvent(view))
	case engine.OutcomeCompleted:
		s.log.Info("survey completed", zap.String("session_id", sess.ID), zap.Int("survey_id", sess.SurveyID))
		s.broadcaster.BroadcastToSession(sess.ID, EventSubmissionCompleted, map[string]interface{}{
			"survey_id":       sess.SurveyID,
			"closing_message": view.ClosingMessage,
		})
	}
	return outcome, view, nil
}

// Back moves the session to its previous page
func (s *SessionService) Back(sessionID string) (bool, engine.View, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return false, engine.View{}, err
	}

	moved, err := sess.Navigator.Retreat()
	view := sess.Navigator.View()
	if err != nil {
		return false, view, err
	}
	if moved {
		s.broadcaster.BroadcastToSession(sess.ID, EventPageChanged, pageEvent(view))
	}
	return moved, view, nil
}

// Discard closes a session and drops its in-memory answers
func (s *SessionService) Discard(sessionID string) error {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.close(sessionID, "discarded")
	return nil
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than maxIdle. Sessions with a
// submission in flight are kept.
func (s *SessionService) Sweep() int {
	cutoff := s.now().Add(-s.maxIdle)

	var evicted []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.Navigator.State() == engine.StateSubmitting {
			continue
		}
		delete(s.sessions, id)
		evicted = append(evicted, id)
	}
	s.mu.Unlock()

	for _, id := range evicted {
		s.close(id, "idle")
	}
	return len(evicted)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *SessionService) close(sessionID, reason string) {
	s.log.Info("session closed", zap.String("session_id", sessionID), zap.String("reason", reason))
	s.broadcaster.BroadcastToSession(sessionID, EventSessionClosed, map[string]interface{}{"reason": reason})
	s.broadcaster.DisconnectSession(sessionID)
}

func pageEvent(view engine.View) map[string]interface{} {
	return map[string]interface{}{
		"page_number": view.PageNumber,
		"page_count":  view.PageCount,
		"progress":    view.Progress,
	}
}

// notifyingSubmitter announces a submission before handing it on
type notifyingSubmitter struct {
	next    engine.Submitter
	onStart func()
}

func (n *notifyingSubmitter) Submit(ctx context.Context, req *model.SubmitRequest) error {
	n.onStart()
	return n.next.Submit(ctx, req)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

const maxAnswerBytes = 64 << 10

// SessionHandler handles survey-taking sessions
type SessionHandler struct {
	sessionSvc *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// NextResponse is returned by the next endpoint
type NextResponse struct {
	Outcome engine.Outcome `json:"outcome"`
	View    engine.View    `json:"view"`
}

// BackResponse is returned by the back endpoint
type BackResponse struct {
	Moved bool        `json:"moved"`
	View  engine.View `json:"view"`
}

// SubmissionFailedResponse reports a failed submission; the session stays on
// its last page and next can be called again.
type SubmissionFailedResponse struct {
	Error     string      `json:"error"`
	Retryable bool        `json:"retryable"`
	View      engine.View `json:"view"`
}

// Start handles POST /v1/surveys/{surveyId}/sessions
//
//	@Summary	Start a session
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		surveyId	path		int							true	"Survey ID"
//	@Param		body		body		model.StartSessionRequest	false	"Respondent"
//	@Success	201			{object}	service.StartResult
//	@Failure	404			{object}	ErrorResponse
//	@Failure	502			{object}	ErrorResponse
//	@Router		/v1/surveys/{surveyId}/sessions [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := intVar(w, r, "surveyId")
	if !ok {
		return
	}

	var req model.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessionSvc.Start(r.Context(), surveyID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Get handles GET /v1/sessions/{sessionId}
//
//	@Summary	Current page of a session
//	@Tags		sessions
//	@Produce	json
//	@Security	SessionToken
//	@Param		sessionId	path		string	true	"Session ID"
//	@Success	200			{object}	engine.View
//	@Failure	404			{object}	ErrorResponse
//	@Router		/v1/sessions/{sessionId} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionSvc.View(mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Answer handles PUT /v1/sessions/{sessionId}/answers/{questionId}. The body
// is the bare answer value; null clears it.
//
//	@Summary	Set an answer
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Security	SessionToken
//	@Param		sessionId	path		string	true	"Session ID"
//	@Param		questionId	path		int		true	"Question ID"
//	@Success	200			{object}	engine.View
//	@Failure	404			{object}	ErrorResponse
//	@Failure	409			{object}	ErrorResponse
//	@Failure	422			{object}	ErrorResponse
//	@Router		/v1/sessions/{sessionId}/answers/{questionId} [put]
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	questionID, ok := intVar(w, r, "questionId")
	if !ok {
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAnswerBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "answer too large")
		return
	}
	if len(raw) > 0 && !json.Valid(raw) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.sessionSvc.Answer(mux.Vars(r)["sessionId"], questionID, raw)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Next handles POST /v1/sessions/{sessionId}/next
//
//	@Summary	Advance, or submit from the last page
//	@Tags		sessions
//	@Produce	json
//	@Security	SessionToken
//	@Param		sessionId	path		string	true	"Session ID"
//	@Success	200			{object}	NextResponse
//	@Failure	409			{object}	ErrorResponse
//	@Failure	502			{object}	SubmissionFailedResponse
//	@Router		/v1/sessions/{sessionId}/next [post]
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	outcome, view, err := h.sessionSvc.Next(r.Context(), mux.Vars(r)["sessionId"])

	var subErr *engine.SubmissionError
	if errors.As(err, &subErr) {
		writeJSON(w, http.StatusBadGateway, SubmissionFailedResponse{
			Error:     err.Error(),
			Retryable: true,
			View:      view,
		})
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NextResponse{Outcome: outcome, View: view})
}

// Back handles POST /v1/sessions/{sessionId}/back
//
//	@Summary	Go back one page
//	@Tags		sessions
//	@Produce	json
//	@Security	SessionToken
//	@Param		sessionId	path		string	true	"Session ID"
//	@Success	200			{object}	BackResponse
//	@Router		/v1/sessions/{sessionId}/back [post]
func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	moved, view, err := h.sessionSvc.Back(mux.Vars(r)["sessionId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BackResponse{Moved: moved, View: view})
}

// Discard handles DELETE /v1/sessions/{sessionId}
//
//	@Summary	Discard a session
//	@Tags		sessions
//	@Security	SessionToken
//	@Param		sessionId	path	string	true	"Session ID"
//	@Success	204
//	@Router		/v1/sessions/{sessionId} [delete]
func (h *SessionHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Discard(mux.Vars(r)["sessionId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

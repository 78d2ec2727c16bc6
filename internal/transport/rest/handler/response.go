package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// statusFor maps service and engine errors onto HTTP statuses.
func statusFor(err error) int {
	var loadErr *service.LoadError
	var subErr *engine.SubmissionError
	switch {
	case errors.As(err, &loadErr):
		if loadErr.NotFound() {
			return http.StatusNotFound
		}
		if errors.Is(err, model.ErrInvalidDefinition) || errors.Is(err, engine.ErrNoPages) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadGateway
	case errors.As(err, &subErr):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, engine.ErrUnknownQuestion):
		return http.StatusNotFound
	case errors.Is(err, model.ErrAnswerShape), errors.Is(err, model.ErrNotAnswerable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrCompleted), errors.Is(err, engine.ErrSubmissionInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"surveyflow/internal/model"
	"surveyflow/internal/service"
)

// SurveyHandler handles survey endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// PagesResponse previews how a survey paginates
type PagesResponse struct {
	SurveyID        int                    `json:"survey_id"`
	Name            string                 `json:"name"`
	Pagination      model.PaginationPolicy `json:"pagination"`
	ProgressDisplay model.ProgressMode     `json:"progress_display"`
	SkippingAllowed bool                   `json:"skipping_allowed"`
	Pages           []model.Page           `json:"pages"`
}

// Pages handles GET /v1/surveys/{surveyId}/pages
//
//	@Summary	Preview a survey's pages
//	@Tags		surveys
//	@Produce	json
//	@Param		surveyId	path		int	true	"Survey ID"
//	@Success	200			{object}	PagesResponse
//	@Failure	404			{object}	ErrorResponse
//	@Failure	502			{object}	ErrorResponse
//	@Router		/v1/surveys/{surveyId}/pages [get]
func (h *SurveyHandler) Pages(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := intVar(w, r, "surveyId")
	if !ok {
		return
	}

	survey, pages, err := h.surveySvc.Pages(r.Context(), surveyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if pages == nil {
		pages = []model.Page{}
	}
	writeJSON(w, http.StatusOK, PagesResponse{
		SurveyID:        survey.ID,
		Name:            survey.Name,
		Pagination:      survey.Settings.Pagination,
		ProgressDisplay: survey.Settings.ProgressDisplay,
		SkippingAllowed: survey.Settings.SkippingAllowed(),
		Pages:           pages,
	})
}

func intVar(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

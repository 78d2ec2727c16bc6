package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"surveyflow/internal/cache"
	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// SurveyService loads survey definitions, normalized and ready to paginate
type SurveyService struct {
	source DefinitionSource
	cache  cache.DefinitionCache // nil disables caching
	group  singleflight.Group
	log    *zap.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(source DefinitionSource, definitionCache cache.DefinitionCache, log *zap.Logger) *SurveyService {
	return &SurveyService{
		source: source,
		cache:  definitionCache,
		log:    log.Named("surveys"),
	}
}

// Load returns the definition of a survey. Concurrent loads of the same id
// share one backend fetch, which runs detached from any single caller's
// cancellation; each caller still stops waiting when its own ctx is done.
// Every failure is a *LoadError.
func (s *SurveyService) Load(ctx context.Context, id int) (*model.Survey, error) {
	if s.cache != nil {
		survey, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("definition cache read failed", zap.Int("survey_id", id), zap.Error(err))
		}
		if survey != nil {
			return survey, nil
		}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.Itoa(id), func() (interface{}, error) {
		return s.fetch(fetchCtx, id)
	})
	select {
	case <-ctx.Done():
		return nil, &LoadError{SurveyID: id, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, &LoadError{SurveyID: id, Err: res.Err}
		}
		return res.Val.(*model.Survey), nil
	}
}

func (s *SurveyService) fetch(ctx context.Context, id int) (*model.Survey, error) {
	survey, err := s.source.GetSurvey(ctx, id)
	if err != nil {
		s.log.Error("definition fetch failed", zap.Int("survey_id", id), zap.Error(err))
		return nil, err
	}
	survey.ID = id
	if err := survey.Normalize(); err != nil {
		return nil, err
	}
	if answerable(survey) == 0 {
		return nil, engine.ErrNoPages
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, survey); err != nil {
			s.log.Warn("definition cache write failed", zap.Int("survey_id", id), zap.Error(err))
		}
	}
	s.log.Info("definition loaded", zap.Int("survey_id", id), zap.Int("questions", len(survey.Questions)))
	return survey, nil
}

// Pages loads a survey and paginates it with its own policy
func (s *SurveyService) Pages(ctx context.Context, id int) (*model.Survey, []model.Page, error) {
	survey, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return survey, engine.BuildPages(survey.Questions, survey.Settings.Pagination), nil
}

func answerable(survey *model.Survey) int {
	n := 0
	for i := range survey.Questions {
		if !survey.Questions[i].IsSection() {
			n++
		}
	}
	return n
}

package service

import (
	"context"
	"fmt"

	"surveyflow/internal/model"
	"surveyflow/internal/repository"
)

// DefinitionSource reads survey definitions from a backend
type DefinitionSource interface {
	GetSurvey(ctx context.Context, id int) (*model.Survey, error)
}

// RepoSource serves definitions stored in MongoDB
type RepoSource struct {
	surveyRepo repository.SurveyRepo
}

func NewRepoSource(surveyRepo repository.SurveyRepo) *RepoSource {
	return &RepoSource{surveyRepo: surveyRepo}
}

func (s *RepoSource) GetSurvey(ctx context.Context, id int) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey == nil {
		return nil, ErrSurveyNotFound
	}
	return survey, nil
}

// RepoSubmitter stores submissions in MongoDB
type RepoSubmitter struct {
	responseRepo repository.ResponseRepository
}

func NewRepoSubmitter(responseRepo repository.ResponseRepository) *RepoSubmitter {
	return &RepoSubmitter{responseRepo: responseRepo}
}

func (s *RepoSubmitter) Submit(ctx context.Context, req *model.SubmitRequest) error {
	if err := s.responseRepo.Create(ctx, &model.Submission{SubmitRequest: *req}); err != nil {
		return fmt.Errorf("failed to store responses: %w", err)
	}
	return nil
}

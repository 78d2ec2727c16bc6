package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// SurveyRepo handles MongoDB operations for survey definitions
type SurveyRepo interface {
	GetByID(ctx context.Context, id int) (*model.Survey, error)
	List(ctx context.Context) ([]*model.Survey, error)
	Upsert(ctx context.Context, survey *model.Survey) error
	Delete(ctx context.Context, id int) error
}

type surveyRepo struct {
	collection *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		collection: db.Collection("surveys"),
	}
}

func (r *surveyRepo) GetByID(ctx context.Context, id int) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) List(ctx context.Context) ([]*model.Survey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var surveys []*model.Survey
	if err := cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}

// Upsert replaces the definition stored under survey.ID, creating it if absent
func (r *surveyRepo) Upsert(ctx context.Context, survey *model.Survey) error {
	survey.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": survey.ID}, survey, options.Replace().SetUpsert(true))
	return err
}

func (r *surveyRepo) Delete(ctx context.Context, id int) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

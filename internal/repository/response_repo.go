package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyflow/internal/model"
)

// ResponseRepository stores submitted survey responses
type ResponseRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	GetBySurveyID(ctx context.Context, surveyID int) ([]*model.Submission, error)
	GetByContextReference(ctx context.Context, ref string) (*model.Submission, error)
}

type responseRepository struct {
	collection *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) ResponseRepository {
	return &responseRepository{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepository) Create(ctx context.Context, submission *model.Submission) error {
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, submission)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		submission.ID = oid.Hex()
	}
	return nil
}

func (r *responseRepository) GetBySurveyID(ctx context.Context, surveyID int) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var submissions []*model.Submission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *responseRepository) GetByContextReference(ctx context.Context, ref string) (*model.Submission, error) {
	var submission model.Submission
	err := r.collection.FindOne(ctx, bson.M{"contextReference": ref}).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

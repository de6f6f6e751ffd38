package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartaitools/internal/database"
	"smartaitools/internal/models"
	"smartaitools/internal/utils"
)

type PromptRepository interface {
	Create(ctx context.Context, p *models.Prompt) (*models.Prompt, error)
	Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Prompt, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prompt, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Prompt, error)
	Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Prompt, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
}

type promptRepository struct {
	db database.Service
}

func NewPromptRepository(db database.Service) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) Create(ctx context.Context, p *models.Prompt) (*models.Prompt, error) {
	queryType := "create"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("prompts")
	result, err := collection.InsertOne(ctx, p)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to add prompt: %w", err)
	}
	p.ID = result.InsertedID.(primitive.ObjectID)
	return p, nil
}

func (r *promptRepository) Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Prompt, error) {
	queryType := "find"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("prompts")
	opts := options.Find().SetSort(sort).SetLimit(limit).SetSkip((page - 1) * limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to retrieve prompts: %w", err)
	}
	defer cursor.Close(ctx)

	var prompts []models.Prompt
	if err := cursor.All(ctx, &prompts); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("error decoding prompts: %w", err)
	}
	return prompts, nil
}

func (r *promptRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	queryType := "count"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("prompts")
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return 0, fmt.Errorf("failed to count prompts: %w", err)
	}
	return count, nil
}

func (r *promptRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Prompt, error) {
	queryType := "findOne"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var p models.Prompt
	collection := r.db.Collection("prompts")
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &p, nil
}

func (r *promptRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Prompt, error) {
	queryType := "updateOne"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var updated models.Prompt
	collection := r.db.Collection("prompts")
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &updated, nil
}

// Rate replaces the rater's entry (or appends one) and recomputes the average
// in a single pipeline update, so concurrent raters cannot lose each other's
// writes.
func (r *promptRepository) Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Prompt, error) {
	queryType := "rate"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var updated models.Prompt
	collection := r.db.Collection("prompts")
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, ratingPipeline(rater, value, at), opts).Decode(&updated)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &updated, nil
}

func (r *promptRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	queryType := "deleteOne"
	repository := "prompt"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("prompts")
	deleteResult, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to delete prompt: %w", err)
	}
	return deleteResult, nil
}

// ratingPipeline filters out the rater's previous entry, appends the new one
// and recomputes average_rating from the full list, all within one atomic
// per-document update.
func ratingPipeline(rater primitive.ObjectID, value int, at time.Time) mongo.Pipeline {
	entry := bson.M{"user": rater, "rating": value, "created_at": at}
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"ratings": bson.M{"$concatArrays": bson.A{
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$ratings", bson.A{}}},
					"as":    "r",
					"cond":  bson.M{"$ne": bson.A{"$$r.user", rater}},
				}},
				bson.A{entry},
			}},
			"updated_at": at,
		}}},
		{{Key: "$set", Value: bson.M{
			"average_rating": bson.M{"$avg": "$ratings.rating"},
			"rating_count":   bson.M{"$size": "$ratings"},
		}}},
	}
}

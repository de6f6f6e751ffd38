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

type ToolRepository interface {
	Create(ctx context.Context, t *models.Tool) (*models.Tool, error)
	Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Tool, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tool, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Tool, error)
	Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Tool, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
}

type toolRepository struct {
	db database.Service
}

func NewToolRepository(db database.Service) ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) Create(ctx context.Context, t *models.Tool) (*models.Tool, error) {
	queryType := "create"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("tools")
	result, err := collection.InsertOne(ctx, t)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to add tool: %w", err)
	}
	t.ID = result.InsertedID.(primitive.ObjectID)
	return t, nil
}

func (r *toolRepository) Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Tool, error) {
	queryType := "find"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("tools")
	opts := options.Find().SetSort(sort).SetLimit(limit).SetSkip((page - 1) * limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to retrieve tools: %w", err)
	}
	defer cursor.Close(ctx)

	var tools []models.Tool
	if err := cursor.All(ctx, &tools); err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("error decoding tools: %w", err)
	}
	return tools, nil
}

func (r *toolRepository) Count(ctx context.Context, filter bson.M) (int64, error) {
	queryType := "count"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("tools")
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return 0, fmt.Errorf("failed to count tools: %w", err)
	}
	return count, nil
}

func (r *toolRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tool, error) {
	queryType := "findOne"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var t models.Tool
	collection := r.db.Collection("tools")
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			status = "error"
			utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		}
		return nil, err
	}
	return &t, nil
}

func (r *toolRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Tool, error) {
	queryType := "updateOne"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var updated models.Tool
	collection := r.db.Collection("tools")
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

// Rate shares the atomic overwrite-or-append pipeline with the prompt
// repository.
func (r *toolRepository) Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Tool, error) {
	queryType := "rate"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	var updated models.Tool
	collection := r.db.Collection("tools")
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

func (r *toolRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	queryType := "deleteOne"
	repository := "tool"
	status := "success"
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		utils.DBQueryDurationSeconds.WithLabelValues(queryType, repository, status).Observe(v)
	}))
	defer timer.ObserveDuration()

	collection := r.db.Collection("tools")
	deleteResult, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		status = "error"
		utils.DBQueryErrorsTotal.WithLabelValues(queryType, repository).Inc()
		return nil, fmt.Errorf("failed to delete tool: %w", err)
	}
	return deleteResult, nil
}

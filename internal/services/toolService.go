package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"smartaitools/internal/metrics"
	"smartaitools/internal/models"
	"smartaitools/internal/policy"
	"smartaitools/internal/repositories"
)

type ToolService interface {
	List(ctx context.Context, f models.RecordFilter, requester primitive.ObjectID) (*models.ToolPage, error)
	GetByID(ctx context.Context, id, requester primitive.ObjectID) (*models.Tool, error)
	Create(ctx context.Context, requester primitive.ObjectID, req models.CreateToolRequest) (*models.Tool, error)
	Update(ctx context.Context, id, requester primitive.ObjectID, req models.UpdateToolRequest) (*models.Tool, error)
	Delete(ctx context.Context, id, requester primitive.ObjectID) error
	Rate(ctx context.Context, id, requester primitive.ObjectID, rating int) (*models.Tool, error)
}

type toolServiceImpl struct {
	toolRepo repositories.ToolRepository
	userRepo repositories.UserRepository
}

func NewToolService(toolRepo repositories.ToolRepository, userRepo repositories.UserRepository) ToolService {
	return &toolServiceImpl{toolRepo: toolRepo, userRepo: userRepo}
}

func (s *toolServiceImpl) List(ctx context.Context, f models.RecordFilter, requester primitive.ObjectID) (*models.ToolPage, error) {
	f.Normalize()
	applyReadScope(&f, requester)
	filter := BuildToolFilter(f)
	log.Debug().Interface("filter", filter).Int64("page", f.Page).Msg("Listing tools")

	tools, err := s.toolRepo.Find(ctx, filter, sortSpec(f.Sort), f.Limit, f.Page)
	if err != nil {
		log.Error().Err(err).Interface("filter", filter).Msg("Error finding tools")
		return nil, retrievalErr(err)
	}
	total, err := s.toolRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Interface("filter", filter).Msg("Error counting tools")
		return nil, retrievalErr(err)
	}

	if tools == nil {
		tools = []models.Tool{}
	}
	if err := s.attachOwners(ctx, tools); err != nil {
		return nil, retrievalErr(err)
	}

	return &models.ToolPage{
		Records:     tools,
		TotalCount:  total,
		TotalPages:  models.TotalPages(total, f.Limit),
		CurrentPage: f.Page,
	}, nil
}

func (s *toolServiceImpl) attachOwners(ctx context.Context, tools []models.Tool) error {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, t := range tools {
		if !seen[t.CreatedBy] {
			seen[t.CreatedBy] = true
			ids = append(ids, t.CreatedBy)
		}
	}
	owners, err := s.userRepo.FindPublicByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("Error expanding tool owners")
		return err
	}
	for i := range tools {
		if owner, ok := owners[tools[i].CreatedBy]; ok {
			tools[i].Owner = &owner
		}
	}
	return nil
}

func (s *toolServiceImpl) GetByID(ctx context.Context, id, requester primitive.ObjectID) (*models.Tool, error) {
	t, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error finding tool by ID")
		return nil, retrievalErr(err)
	}
	if !policy.CanRead(t.Visibility, t.CreatedBy, t.SharedWith, requester) {
		return nil, ErrForbidden
	}
	one := []models.Tool{*t}
	if err := s.attachOwners(ctx, one); err != nil {
		return nil, retrievalErr(err)
	}
	return &one[0], nil
}

func (s *toolServiceImpl) Create(ctx context.Context, requester primitive.ObjectID, req models.CreateToolRequest) (*models.Tool, error) {
	sharedWith, err := parseIDList(req.SharedWith)
	if err != nil {
		return nil, validationErr("invalid shared_with entry: %v", err)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	now := time.Now()
	t := &models.Tool{
		CreatedBy:   requester,
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Categories:  req.Categories,
		Pricing:     req.Pricing,
		Tags:        req.Tags,
		Visibility:  visibility,
		SharedWith:  sharedWith,
		Ratings:     []models.Rating{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, validationErr("%v", err)
	}

	created, err := s.toolRepo.Create(ctx, t)
	if err != nil {
		log.Error().Err(err).Str("userID", requester.Hex()).Msg("Error inserting tool")
		return nil, err
	}
	metrics.ToolCreatedTotal.Inc()
	log.Info().Str("userID", requester.Hex()).Str("tool_id", created.ID.Hex()).Msg("Tool created")
	return created, nil
}

func (s *toolServiceImpl) Update(ctx context.Context, id, requester primitive.ObjectID, req models.UpdateToolRequest) (*models.Tool, error) {
	existing, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error finding tool for update")
		return nil, retrievalErr(err)
	}
	if !policy.CanMutate(existing.CreatedBy, requester) {
		return nil, ErrForbidden
	}

	candidate := *existing
	set := bson.M{}
	if req.Name != nil {
		candidate.Name = *req.Name
		set["name"] = *req.Name
	}
	if req.Description != nil {
		candidate.Description = *req.Description
		set["description"] = *req.Description
	}
	if req.Website != nil {
		candidate.Website = *req.Website
		set["website"] = *req.Website
	}
	if req.Categories != nil {
		candidate.Categories = *req.Categories
		set["categories"] = *req.Categories
	}
	if req.Pricing != nil {
		candidate.Pricing = *req.Pricing
		set["pricing"] = *req.Pricing
	}
	if req.Tags != nil {
		candidate.Tags = *req.Tags
		set["tags"] = *req.Tags
	}
	if req.Visibility != nil {
		candidate.Visibility = *req.Visibility
		set["visibility"] = *req.Visibility
	}
	if req.SharedWith != nil {
		sharedWith, err := parseIDList(*req.SharedWith)
		if err != nil {
			return nil, validationErr("invalid shared_with entry: %v", err)
		}
		candidate.SharedWith = sharedWith
		set["shared_with"] = sharedWith
	}

	if len(set) == 0 {
		return nil, validationErr("no valid fields provided for update")
	}
	if err := candidate.Validate(); err != nil {
		return nil, validationErr("%v", err)
	}
	set["updated_at"] = time.Now()

	updated, err := s.toolRepo.UpdateByID(ctx, id, set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error updating tool")
		return nil, err
	}
	log.Info().Str("userID", requester.Hex()).Str("tool_id", id.Hex()).Msg("Tool updated")
	return updated, nil
}

func (s *toolServiceImpl) Delete(ctx context.Context, id, requester primitive.ObjectID) error {
	existing, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error finding tool for delete")
		return retrievalErr(err)
	}
	if !policy.CanMutate(existing.CreatedBy, requester) {
		return ErrForbidden
	}

	result, err := s.toolRepo.DeleteByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error deleting tool")
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	log.Info().Str("userID", requester.Hex()).Str("tool_id", id.Hex()).Msg("Tool deleted")
	return nil
}

func (s *toolServiceImpl) Rate(ctx context.Context, id, requester primitive.ObjectID, rating int) (*models.Tool, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, validationErr("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	existing, err := s.toolRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error finding tool for rating")
		return nil, retrievalErr(err)
	}
	if !policy.CanRead(existing.Visibility, existing.CreatedBy, existing.SharedWith, requester) {
		return nil, ErrForbidden
	}

	updated, err := s.toolRepo.Rate(ctx, id, requester, rating, time.Now())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("tool_id", id.Hex()).Msg("Error rating tool")
		return nil, err
	}
	metrics.RatingSubmittedTotal.WithLabelValues("tool").Inc()
	log.Info().Str("userID", requester.Hex()).Str("tool_id", id.Hex()).Int("rating", rating).Msg("Tool rated")
	return updated, nil
}

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

type PromptService interface {
	List(ctx context.Context, f models.RecordFilter, requester primitive.ObjectID) (*models.PromptPage, error)
	GetByID(ctx context.Context, id, requester primitive.ObjectID) (*models.Prompt, error)
	Create(ctx context.Context, requester primitive.ObjectID, req models.CreatePromptRequest) (*models.Prompt, error)
	Update(ctx context.Context, id, requester primitive.ObjectID, req models.UpdatePromptRequest) (*models.Prompt, error)
	Delete(ctx context.Context, id, requester primitive.ObjectID) error
	Rate(ctx context.Context, id, requester primitive.ObjectID, rating int) (*models.Prompt, error)
}

type promptServiceImpl struct {
	promptRepo repositories.PromptRepository
	userRepo   repositories.UserRepository
}

func NewPromptService(promptRepo repositories.PromptRepository, userRepo repositories.UserRepository) PromptService {
	return &promptServiceImpl{promptRepo: promptRepo, userRepo: userRepo}
}

func (s *promptServiceImpl) List(ctx context.Context, f models.RecordFilter, requester primitive.ObjectID) (*models.PromptPage, error) {
	f.Normalize()
	applyReadScope(&f, requester)
	filter := BuildPromptFilter(f)
	log.Debug().Interface("filter", filter).Int64("page", f.Page).Msg("Listing prompts")

	prompts, err := s.promptRepo.Find(ctx, filter, sortSpec(f.Sort), f.Limit, f.Page)
	if err != nil {
		log.Error().Err(err).Interface("filter", filter).Msg("Error finding prompts")
		return nil, retrievalErr(err)
	}
	total, err := s.promptRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Interface("filter", filter).Msg("Error counting prompts")
		return nil, retrievalErr(err)
	}

	if prompts == nil {
		prompts = []models.Prompt{}
	}
	if err := s.attachOwners(ctx, prompts); err != nil {
		return nil, retrievalErr(err)
	}

	return &models.PromptPage{
		Records:     prompts,
		TotalCount:  total,
		TotalPages:  models.TotalPages(total, f.Limit),
		CurrentPage: f.Page,
	}, nil
}

// attachOwners expands each record's owner to its public projection with a
// single batched lookup.
func (s *promptServiceImpl) attachOwners(ctx context.Context, prompts []models.Prompt) error {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, p := range prompts {
		if !seen[p.CreatedBy] {
			seen[p.CreatedBy] = true
			ids = append(ids, p.CreatedBy)
		}
	}
	owners, err := s.userRepo.FindPublicByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("Error expanding prompt owners")
		return err
	}
	for i := range prompts {
		if owner, ok := owners[prompts[i].CreatedBy]; ok {
			prompts[i].Owner = &owner
		}
	}
	return nil
}

func (s *promptServiceImpl) GetByID(ctx context.Context, id, requester primitive.ObjectID) (*models.Prompt, error) {
	p, err := s.promptRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error finding prompt by ID")
		return nil, retrievalErr(err)
	}
	if !policy.CanRead(p.Visibility, p.CreatedBy, p.SharedWith, requester) {
		return nil, ErrForbidden
	}
	one := []models.Prompt{*p}
	if err := s.attachOwners(ctx, one); err != nil {
		return nil, retrievalErr(err)
	}
	return &one[0], nil
}

func (s *promptServiceImpl) Create(ctx context.Context, requester primitive.ObjectID, req models.CreatePromptRequest) (*models.Prompt, error) {
	sharedWith, err := parseIDList(req.SharedWith)
	if err != nil {
		return nil, validationErr("invalid shared_with entry: %v", err)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	now := time.Now()
	p := &models.Prompt{
		CreatedBy:   requester,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		Tags:        req.Tags,
		Visibility:  visibility,
		SharedWith:  sharedWith,
		Ratings:     []models.Rating{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, validationErr("%v", err)
	}

	created, err := s.promptRepo.Create(ctx, p)
	if err != nil {
		log.Error().Err(err).Str("userID", requester.Hex()).Msg("Error inserting prompt")
		return nil, err
	}
	metrics.PromptCreatedTotal.Inc()
	log.Info().Str("userID", requester.Hex()).Str("prompt_id", created.ID.Hex()).Msg("Prompt created")
	return created, nil
}

func (s *promptServiceImpl) Update(ctx context.Context, id, requester primitive.ObjectID, req models.UpdatePromptRequest) (*models.Prompt, error) {
	existing, err := s.promptRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error finding prompt for update")
		return nil, retrievalErr(err)
	}
	// Ownership is checked against the stored record; a patch can never
	// reassign it.
	if !policy.CanMutate(existing.CreatedBy, requester) {
		return nil, ErrForbidden
	}

	candidate := *existing
	set := bson.M{}
	if req.Title != nil {
		candidate.Title = *req.Title
		set["title"] = *req.Title
	}
	if req.Description != nil {
		candidate.Description = *req.Description
		set["description"] = *req.Description
	}
	if req.Content != nil {
		candidate.Content = *req.Content
		set["content"] = *req.Content
	}
	if req.Category != nil {
		candidate.Category = *req.Category
		set["category"] = *req.Category
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

	updated, err := s.promptRepo.UpdateByID(ctx, id, set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error updating prompt")
		return nil, err
	}
	log.Info().Str("userID", requester.Hex()).Str("prompt_id", id.Hex()).Msg("Prompt updated")
	return updated, nil
}

func (s *promptServiceImpl) Delete(ctx context.Context, id, requester primitive.ObjectID) error {
	existing, err := s.promptRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error finding prompt for delete")
		return retrievalErr(err)
	}
	if !policy.CanMutate(existing.CreatedBy, requester) {
		return ErrForbidden
	}

	result, err := s.promptRepo.DeleteByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error deleting prompt")
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	log.Info().Str("userID", requester.Hex()).Str("prompt_id", id.Hex()).Msg("Prompt deleted")
	return nil
}

func (s *promptServiceImpl) Rate(ctx context.Context, id, requester primitive.ObjectID, rating int) (*models.Prompt, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, validationErr("rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	existing, err := s.promptRepo.FindByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error finding prompt for rating")
		return nil, retrievalErr(err)
	}
	// Any identified user may rate a record they can read; ratings are a
	// social signal, not an owner privilege.
	if !policy.CanRead(existing.Visibility, existing.CreatedBy, existing.SharedWith, requester) {
		return nil, ErrForbidden
	}

	updated, err := s.promptRepo.Rate(ctx, id, requester, rating, time.Now())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("prompt_id", id.Hex()).Msg("Error rating prompt")
		return nil, err
	}
	metrics.RatingSubmittedTotal.WithLabelValues("prompt").Inc()
	log.Info().Str("userID", requester.Hex()).Str("prompt_id", id.Hex()).Int("rating", rating).Msg("Prompt rated")
	return updated, nil
}

func parseIDList(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, idStr := range ids {
		if idStr == "" {
			continue
		}
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

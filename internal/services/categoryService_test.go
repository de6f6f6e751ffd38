package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"smartaitools/internal/models"
)

type fakeCategoryRepo struct {
	stored []models.Category
}

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]models.Category, error) {
	return r.stored, nil
}

func (r *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for i := range r.stored {
		if r.stored[i].Slug == slug {
			return &r.stored[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *fakeCategoryRepo) ReplaceAll(ctx context.Context, categories []models.Category) error {
	r.stored = categories
	return nil
}

// fakeToolRepo only serves paged Find for the rebuild scan.
type fakeToolRepo struct {
	tools []models.Tool
}

func (r *fakeToolRepo) Create(ctx context.Context, t *models.Tool) (*models.Tool, error) {
	return t, nil
}

func (r *fakeToolRepo) Find(ctx context.Context, filter bson.M, sort bson.D, limit, page int64) ([]models.Tool, error) {
	start := (page - 1) * limit
	if start >= int64(len(r.tools)) {
		return nil, nil
	}
	end := start + limit
	if end > int64(len(r.tools)) {
		end = int64(len(r.tools))
	}
	return r.tools[start:end], nil
}

func (r *fakeToolRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(r.tools)), nil
}

func (r *fakeToolRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tool, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeToolRepo) UpdateByID(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Tool, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeToolRepo) Rate(ctx context.Context, id, rater primitive.ObjectID, value int, at time.Time) (*models.Tool, error) {
	return nil, mongo.ErrNoDocuments
}

func (r *fakeToolRepo) DeleteByID(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	return &mongo.DeleteResult{}, nil
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Code":               "code",
		"Machine Learning":   "machine-learning",
		"AI & Data":          "ai-data",
		"  Spaced  Out  ":    "spaced-out",
		"Déjà Vu":            "d-j-vu",
		"already-slugged":    "already-slugged",
		"Trailing Symbols!!": "trailing-symbols",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestRebuildAggregatesCounts(t *testing.T) {
	catRepo := &fakeCategoryRepo{}
	promptRepo := newFakePromptRepo()
	for i := 0; i < 3; i++ {
		p := newPromptFixture(primitive.NewObjectID(), models.VisibilityPublic)
		p.Category = "Code"
		promptRepo.put(p)
	}
	writing := newPromptFixture(primitive.NewObjectID(), models.VisibilityPublic)
	writing.Category = "Writing"
	promptRepo.put(writing)

	toolRepo := &fakeToolRepo{tools: []models.Tool{
		{ID: primitive.NewObjectID(), Name: "Linter", Categories: models.CategoryList{"Code"}, Visibility: models.VisibilityPublic},
		{ID: primitive.NewObjectID(), Name: "Outliner", Categories: models.CategoryList{"Writing", "Productivity"}, Visibility: models.VisibilityPublic},
	}}

	svc := NewCategoryService(catRepo, promptRepo, toolRepo)
	categories, err := svc.Rebuild(context.Background())
	assert.NoError(t, err)

	byName := make(map[string]models.Category)
	for _, c := range categories {
		byName[c.Name] = c
	}
	assert.Equal(t, int64(4), byName["Code"].Count)
	assert.Equal(t, int64(2), byName["Writing"].Count)
	assert.Equal(t, int64(1), byName["Productivity"].Count)
	assert.Equal(t, "code", byName["Code"].Slug)

	// Sorted by name and persisted wholesale.
	assert.Equal(t, categories, catRepo.stored)
	for i := 1; i < len(categories); i++ {
		assert.Less(t, categories[i-1].Name, categories[i].Name)
	}
}

func TestRebuildFeaturedKeepsTopRated(t *testing.T) {
	catRepo := &fakeCategoryRepo{}
	promptRepo := newFakePromptRepo()
	ratings := []float64{2.0, 4.5, 3.0, 5.0, 1.0}
	for i, avg := range ratings {
		p := newPromptFixture(primitive.NewObjectID(), models.VisibilityPublic)
		p.Category = "Code"
		p.Title = "Prompt " + string(rune('A'+i))
		p.AverageRating = avg
		promptRepo.put(p)
	}

	svc := NewCategoryService(catRepo, promptRepo, &fakeToolRepo{})
	categories, err := svc.Rebuild(context.Background())
	assert.NoError(t, err)
	assert.Len(t, categories, 1)

	featured := categories[0].Featured
	assert.Len(t, featured, models.MaxFeatured)
	for i := 1; i < len(featured); i++ {
		assert.GreaterOrEqual(t, featured[i-1].AverageRating, featured[i].AverageRating)
	}
	assert.Equal(t, 5.0, featured[0].AverageRating)
}

func TestRebuildSkipsEmptyCategory(t *testing.T) {
	catRepo := &fakeCategoryRepo{}
	promptRepo := newFakePromptRepo()
	p := newPromptFixture(primitive.NewObjectID(), models.VisibilityPublic)
	p.Category = ""
	promptRepo.put(p)

	svc := NewCategoryService(catRepo, promptRepo, &fakeToolRepo{})
	categories, err := svc.Rebuild(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, categories)
}

func TestGetCategoryBySlugNotFound(t *testing.T) {
	svc := NewCategoryService(&fakeCategoryRepo{}, newFakePromptRepo(), &fakeToolRepo{})
	_, err := svc.GetCategoryBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

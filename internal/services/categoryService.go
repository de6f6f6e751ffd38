package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"smartaitools/internal/metrics"
	"smartaitools/internal/models"
	"smartaitools/internal/repositories"
)

const rebuildBatchSize = 500

type CategoryService interface {
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	Rebuild(ctx context.Context) ([]models.Category, error)
}

type categoryServiceImpl struct {
	categoryRepo repositories.CategoryRepository
	promptRepo   repositories.PromptRepository
	toolRepo     repositories.ToolRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, promptRepo repositories.PromptRepository, toolRepo repositories.ToolRepository) CategoryService {
	return &categoryServiceImpl{categoryRepo: categoryRepo, promptRepo: promptRepo, toolRepo: toolRepo}
}

func (s *categoryServiceImpl) GetCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error retrieving categories")
		return nil, retrievalErr(err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryServiceImpl) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("Error retrieving category")
		return nil, retrievalErr(err)
	}
	return c, nil
}

// categoryAccum collects per-category stats during a rebuild scan.
type categoryAccum struct {
	count    int64
	featured []models.FeaturedRecord
}

func (a *categoryAccum) add(rec models.FeaturedRecord) {
	a.count++
	a.featured = append(a.featured, rec)
	sort.SliceStable(a.featured, func(i, j int) bool {
		return a.featured[i].AverageRating > a.featured[j].AverageRating
	})
	if len(a.featured) > models.MaxFeatured {
		a.featured = a.featured[:models.MaxFeatured]
	}
}

// Rebuild scans every public prompt and tool, derives the category set with
// counts and top-rated featured records, and swaps the stored categories
// wholesale. It runs from the offline batch, never per request.
func (s *categoryServiceImpl) Rebuild(ctx context.Context) ([]models.Category, error) {
	accum := make(map[string]*categoryAccum)
	touch := func(name string, rec models.FeaturedRecord) {
		if name == "" {
			return
		}
		a, ok := accum[name]
		if !ok {
			a = &categoryAccum{}
			accum[name] = a
		}
		a.add(rec)
	}

	publicOnly := bson.M{"visibility": models.VisibilityPublic}
	newestFirst := sortSpec(models.SortNewest)

	for page := int64(1); ; page++ {
		prompts, err := s.promptRepo.Find(ctx, publicOnly, newestFirst, rebuildBatchSize, page)
		if err != nil {
			return nil, fmt.Errorf("scanning prompts: %w", err)
		}
		for _, p := range prompts {
			touch(p.Category, models.FeaturedRecord{ID: p.ID, Kind: "prompt", Title: p.Title, AverageRating: p.AverageRating})
		}
		if int64(len(prompts)) < rebuildBatchSize {
			break
		}
	}

	for page := int64(1); ; page++ {
		tools, err := s.toolRepo.Find(ctx, publicOnly, newestFirst, rebuildBatchSize, page)
		if err != nil {
			return nil, fmt.Errorf("scanning tools: %w", err)
		}
		for _, t := range tools {
			for _, name := range t.Categories {
				touch(name, models.FeaturedRecord{ID: t.ID, Kind: "tool", Title: t.Name, AverageRating: t.AverageRating})
			}
		}
		if int64(len(tools)) < rebuildBatchSize {
			break
		}
	}

	now := time.Now()
	categories := make([]models.Category, 0, len(accum))
	for name, a := range accum {
		categories = append(categories, models.Category{
			Name:        name,
			Slug:        Slugify(name),
			Description: fmt.Sprintf("Prompts and tools in the %s category.", name),
			Icon:        iconFor(name),
			Count:       a.count,
			Featured:    a.featured,
			RebuiltAt:   now,
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })

	if err := s.categoryRepo.ReplaceAll(ctx, categories); err != nil {
		return nil, err
	}
	metrics.CategoryRebuildsTotal.Inc()
	log.Info().Int("categories", len(categories)).Msg("Category index rebuilt")
	return categories, nil
}

// Slugify derives a url-safe slug from a category name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var categoryIcons = map[string]string{
	"Code":         "💻",
	"Writing":      "✍️",
	"Design":       "🎨",
	"Marketing":    "📣",
	"Productivity": "⚡",
	"Research":     "🔬",
	"Education":    "📚",
	"Business":     "💼",
}

func iconFor(name string) string {
	if icon, ok := categoryIcons[name]; ok {
		return icon
	}
	return "✨"
}

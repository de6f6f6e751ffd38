package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartaitools/internal/database"
	"smartaitools/internal/models"
)

func TestPromptRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	db := database.New()
	defer db.Close()

	promptRepo := NewPromptRepository(db)

	t.Run("Create and Get Prompt", func(t *testing.T) {
		owner := primitive.NewObjectID()
		prompt := &models.Prompt{
			CreatedBy:  owner,
			Title:      "Test prompt",
			Content:    "Summarize the following text.",
			Visibility: models.VisibilityPublic,
			Ratings:    []models.Rating{},
			CreatedAt:  time.Now(),
		}

		created, err := promptRepo.Create(context.Background(), prompt)
		assert.NoError(t, err)
		assert.NotNil(t, created)

		found, err := promptRepo.FindByID(context.Background(), created.ID)
		assert.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)

		_, err = promptRepo.DeleteByID(context.Background(), created.ID)
		assert.NoError(t, err)
	})

	t.Run("Rate is atomic and overwrites per rater", func(t *testing.T) {
		owner := primitive.NewObjectID()
		rater := primitive.NewObjectID()
		prompt := &models.Prompt{
			CreatedBy:  owner,
			Title:      "Rated prompt",
			Content:    "Rate me.",
			Visibility: models.VisibilityPublic,
			Ratings:    []models.Rating{},
			CreatedAt:  time.Now(),
		}

		created, err := promptRepo.Create(context.Background(), prompt)
		assert.NoError(t, err)

		updated, err := promptRepo.Rate(context.Background(), created.ID, rater, 5, time.Now())
		assert.NoError(t, err)
		assert.Len(t, updated.Ratings, 1)
		assert.Equal(t, 5.0, updated.AverageRating)
		assert.Equal(t, int64(1), updated.RatingCount)

		updated, err = promptRepo.Rate(context.Background(), created.ID, rater, 2, time.Now())
		assert.NoError(t, err)
		assert.Len(t, updated.Ratings, 1, "re-rating overwrites, never appends")
		assert.Equal(t, 2.0, updated.AverageRating)

		_, err = promptRepo.DeleteByID(context.Background(), created.ID)
		assert.NoError(t, err)
	})
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplyRatingAppendsNewRater(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	now := time.Now()

	ratings := ApplyRating(nil, alice, 4, now)
	ratings = ApplyRating(ratings, bob, 2, now)

	assert.Len(t, ratings, 2)
	assert.Equal(t, 3.0, AverageRating(ratings))
}

func TestApplyRatingOverwritesExistingRater(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	now := time.Now()

	ratings := ApplyRating(nil, alice, 5, now)
	ratings = ApplyRating(ratings, bob, 1, now)
	ratings = ApplyRating(ratings, alice, 3, now)

	assert.Len(t, ratings, 2)

	count := 0
	for _, r := range ratings {
		if r.User == alice {
			count++
			assert.Equal(t, 3, r.Rating)
		}
	}
	assert.Equal(t, 1, count, "exactly one entry per rater")
	assert.Equal(t, 2.0, AverageRating(ratings))
}

func TestAverageRatingEmpty(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one user's rating of a record. A user has at most one entry
// per record; re-rating replaces the existing entry.
type Rating struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ApplyRating replaces the rater's existing entry or appends a new one and
// returns the updated list. This mirrors the aggregation pipeline the
// repositories run server-side so the semantics stay testable without a store.
func ApplyRating(ratings []Rating, rater primitive.ObjectID, value int, at time.Time) []Rating {
	out := make([]Rating, 0, len(ratings)+1)
	for _, r := range ratings {
		if r.User != rater {
			out = append(out, r)
		}
	}
	return append(out, Rating{User: rater, Rating: value, CreatedAt: at})
}

// AverageRating recomputes the mean over the full rating list. Always a full
// recompute, never an incremental adjustment.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

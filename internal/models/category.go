package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxFeatured bounds the featured record list per category.
const MaxFeatured = 3

// Category is a derived entity, rebuilt wholesale by the offline batch in
// cmd/categories. It is never updated incrementally.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Slug        string             `bson:"slug" json:"slug"`
	Description string             `bson:"description" json:"description"`
	Icon        string             `bson:"icon" json:"icon"`
	Count       int64              `bson:"count" json:"count"`
	Featured    []FeaturedRecord   `bson:"featured" json:"featured"`
	RebuiltAt   time.Time          `bson:"rebuilt_at" json:"rebuilt_at"`
}

// FeaturedRecord references a top-rated prompt or tool within a category.
type FeaturedRecord struct {
	ID            primitive.ObjectID `bson:"id" json:"id"`
	Kind          string             `bson:"kind" json:"kind"` // "prompt" or "tool"
	Title         string             `bson:"title" json:"title"`
	AverageRating float64            `bson:"average_rating" json:"average_rating"`
}

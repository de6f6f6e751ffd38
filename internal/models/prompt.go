package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Prompt struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedBy     primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Content       string               `bson:"content" json:"content"`
	Category      string               `bson:"category" json:"category"`
	Tags          []string             `bson:"tags" json:"tags"`
	Visibility    Visibility           `bson:"visibility" json:"visibility"`
	SharedWith    []primitive.ObjectID `bson:"shared_with" json:"shared_with,omitempty"`
	Ratings       []Rating             `bson:"ratings" json:"ratings"`
	AverageRating float64              `bson:"average_rating" json:"average_rating"`
	RatingCount   int64                `bson:"rating_count" json:"rating_count"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`

	// Owner is the minimal public projection of CreatedBy, attached at read
	// time. Never persisted.
	Owner *PublicUser `bson:"-" json:"owner,omitempty"`
}

// Validate checks the structural constraints of a prompt before any write.
func (p *Prompt) Validate() error {
	if p.Title == "" {
		return &FieldError{Field: "title", Reason: "required"}
	}
	if p.Content == "" {
		return &FieldError{Field: "content", Reason: "required"}
	}
	if !p.Visibility.IsValid() {
		return &FieldError{Field: "visibility", Reason: "must be public, private or shared"}
	}
	for _, r := range p.Ratings {
		if r.Rating < MinRating || r.Rating > MaxRating {
			return &FieldError{Field: "ratings", Reason: "rating out of range"}
		}
	}
	return nil
}

type CreatePromptRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Visibility  Visibility `json:"visibility"`
	SharedWith  []string   `json:"shared_with"`
}

type UpdatePromptRequest struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Content     *string     `json:"content,omitempty"`
	Category    *string     `json:"category,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	Visibility  *Visibility `json:"visibility,omitempty"`
	SharedWith  *[]string   `json:"shared_with,omitempty"`
}

type RateRequest struct {
	Rating int `json:"rating"`
}

type EnhancePromptRequest struct {
	Instruction string `json:"instruction"`
}

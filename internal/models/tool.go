package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Pricing string

const (
	PricingFree     Pricing = "free"
	PricingFreemium Pricing = "freemium"
	PricingPaid     Pricing = "paid"
)

func (p Pricing) IsValid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid:
		return true
	}
	return false
}

// CategoryList normalizes the upstream "string or array of strings" category
// field once at ingestion. Every read site sees a plain slice.
type CategoryList []string

func (c *CategoryList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*c = nil
		} else {
			*c = CategoryList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*c = CategoryList(many)
	return nil
}

type Tool struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedBy     primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description" json:"description"`
	Website       string               `bson:"website" json:"website"`
	Categories    CategoryList         `bson:"categories" json:"categories"`
	Pricing       Pricing              `bson:"pricing" json:"pricing"`
	Tags          []string             `bson:"tags" json:"tags"`
	Visibility    Visibility           `bson:"visibility" json:"visibility"`
	SharedWith    []primitive.ObjectID `bson:"shared_with" json:"shared_with,omitempty"`
	Ratings       []Rating             `bson:"ratings" json:"ratings"`
	AverageRating float64              `bson:"average_rating" json:"average_rating"`
	RatingCount   int64                `bson:"rating_count" json:"rating_count"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`

	Owner *PublicUser `bson:"-" json:"owner,omitempty"`
}

func (t *Tool) Validate() error {
	if t.Name == "" {
		return &FieldError{Field: "name", Reason: "required"}
	}
	if !t.Visibility.IsValid() {
		return &FieldError{Field: "visibility", Reason: "must be public, private or shared"}
	}
	if t.Pricing != "" && !t.Pricing.IsValid() {
		return &FieldError{Field: "pricing", Reason: "must be free, freemium or paid"}
	}
	for _, r := range t.Ratings {
		if r.Rating < MinRating || r.Rating > MaxRating {
			return &FieldError{Field: "ratings", Reason: "rating out of range"}
		}
	}
	return nil
}

type CreateToolRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Categories  CategoryList `json:"categories"`
	Pricing     Pricing      `json:"pricing"`
	Tags        []string     `json:"tags"`
	Visibility  Visibility   `json:"visibility"`
	SharedWith  []string     `json:"shared_with"`
}

type UpdateToolRequest struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Website     *string       `json:"website,omitempty"`
	Categories  *CategoryList `json:"categories,omitempty"`
	Pricing     *Pricing      `json:"pricing,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
	Visibility  *Visibility   `json:"visibility,omitempty"`
	SharedWith  *[]string     `json:"shared_with,omitempty"`
}

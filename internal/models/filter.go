package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Sort keys accepted by the listing endpoints.
const (
	SortNewest  = "newest"
	SortRating  = "rating"
	SortPopular = "popular"
	SortName    = "name"
)

// RecordFilter is the per-request filter set for a listing call. All fields
// compose conjunctively; Search and AccessibleBy each expand into an internal
// disjunction in the query builder.
type RecordFilter struct {
	Page         int64
	Limit        int64
	Category     string
	Search       string
	Visibility   []Visibility
	UserID       *primitive.ObjectID
	Favorites    *primitive.ObjectID
	SharedWith   *primitive.ObjectID
	AccessibleBy *primitive.ObjectID
	Sort         string

	// Scope is the requester's read scope, set by the listing service and
	// never parsed from the request. It conjoins with every other filter so
	// a listing can only return records the requester could fetch directly.
	Scope *primitive.ObjectID
}

// Normalize clamps pagination to sane bounds. The page number itself is kept
// as given; a page past the end simply yields an empty record list.
func (f *RecordFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// TotalPages is ceil(total/limit) with a floor of one page even for an empty
// result set.
func TotalPages(total, limit int64) int64 {
	if limit < 1 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

type PromptPage struct {
	Records     []Prompt `json:"records"`
	TotalCount  int64    `json:"totalCount"`
	TotalPages  int64    `json:"totalPages"`
	CurrentPage int64    `json:"currentPage"`
}

type ToolPage struct {
	Records     []Tool `json:"records"`
	TotalCount  int64  `json:"totalCount"`
	TotalPages  int64  `json:"totalPages"`
	CurrentPage int64  `json:"currentPage"`
}

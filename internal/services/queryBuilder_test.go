package services

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartaitools/internal/models"
)

func TestBuildPromptFilterEmpty(t *testing.T) {
	filter := BuildPromptFilter(models.RecordFilter{})
	assert.Equal(t, bson.M{}, filter, "no filters means match-all")
}

func TestBuildPromptFilterCategoryAndSearch(t *testing.T) {
	f := models.RecordFilter{Category: "Code", Search: "lint"}
	filter := BuildPromptFilter(f)

	assert.Equal(t, "Code", filter["category"])

	or, ok := filter["$or"].([]bson.M)
	assert.True(t, ok, "search expands into an $or group")
	assert.Len(t, or, 3)

	pattern, ok := or[0]["title"].(primitive.Regex)
	assert.True(t, ok)
	assert.Equal(t, "lint", pattern.Pattern)
	assert.Equal(t, "i", pattern.Options, "search is case-insensitive")
}

func TestBuildPromptFilterSearchEscapesRegex(t *testing.T) {
	f := models.RecordFilter{Search: "c++ (v2)"}
	filter := BuildPromptFilter(f)

	or := filter["$or"].([]bson.M)
	pattern := or[0]["title"].(primitive.Regex)
	assert.Equal(t, `c\+\+ \(v2\)`, pattern.Pattern)
}

func TestBuildPromptFilterAccessibleBy(t *testing.T) {
	u42 := primitive.NewObjectID()
	f := models.RecordFilter{AccessibleBy: &u42}
	filter := BuildPromptFilter(f)

	or, ok := filter["$or"].([]bson.M)
	assert.True(t, ok)
	assert.Equal(t, []bson.M{
		{"visibility": models.VisibilityPublic},
		{"created_by": u42},
		{"shared_with": u42},
	}, or)
}

func TestBuildPromptFilterSearchAndAccessibleByConjoin(t *testing.T) {
	u42 := primitive.NewObjectID()
	f := models.RecordFilter{Search: "lint", AccessibleBy: &u42}
	filter := BuildPromptFilter(f)

	// Both disjunctions must survive; neither overwrites the other.
	_, hasOr := filter["$or"]
	assert.False(t, hasOr)

	and, ok := filter["$and"].(bson.A)
	assert.True(t, ok)
	assert.Len(t, and, 2)
	for _, clause := range and {
		m := clause.(bson.M)
		_, ok := m["$or"].([]bson.M)
		assert.True(t, ok)
	}
}

func TestBuildPromptFilterVisibilitySet(t *testing.T) {
	f := models.RecordFilter{Visibility: []models.Visibility{models.VisibilityPublic, models.VisibilityShared}}
	filter := BuildPromptFilter(f)
	assert.Equal(t, bson.M{"$in": f.Visibility}, filter["visibility"])

	f = models.RecordFilter{Visibility: []models.Visibility{models.VisibilityPrivate}}
	filter = BuildPromptFilter(f)
	assert.Equal(t, models.VisibilityPrivate, filter["visibility"])
}

func TestBuildPromptFilterOwnerFavoritesShared(t *testing.T) {
	owner := primitive.NewObjectID()
	rater := primitive.NewObjectID()
	sharee := primitive.NewObjectID()
	f := models.RecordFilter{UserID: &owner, Favorites: &rater, SharedWith: &sharee}
	filter := BuildPromptFilter(f)

	assert.Equal(t, owner, filter["created_by"])
	assert.Equal(t, rater, filter["ratings.user"])
	assert.Equal(t, sharee, filter["shared_with"])
}

func TestBuildToolFilterUsesToolFields(t *testing.T) {
	f := models.RecordFilter{Category: "Code", Search: "lint"}
	filter := BuildToolFilter(f)

	assert.Equal(t, "Code", filter["categories"])
	or := filter["$or"].([]bson.M)
	_, ok := or[0]["name"]
	assert.True(t, ok, "tool search matches name, not title")
}

func TestApplyReadScopeAnonymous(t *testing.T) {
	someone := primitive.NewObjectID()
	f := models.RecordFilter{
		Visibility:   []models.Visibility{models.VisibilityPrivate},
		AccessibleBy: &someone,
	}
	applyReadScope(&f, primitive.NilObjectID)

	assert.Equal(t, []models.Visibility{models.VisibilityPublic}, f.Visibility)
	assert.Nil(t, f.AccessibleBy)
	assert.Nil(t, f.Scope)
}

func TestApplyReadScopeAuthenticated(t *testing.T) {
	requester := primitive.NewObjectID()
	f := models.RecordFilter{}
	applyReadScope(&f, requester)

	assert.NotNil(t, f.Scope)
	assert.Equal(t, requester, *f.Scope)
}

func TestScopeDoesNotDuplicateAccessibleBy(t *testing.T) {
	requester := primitive.NewObjectID()
	f := models.RecordFilter{AccessibleBy: &requester, Scope: &requester}
	filter := BuildPromptFilter(f)

	_, hasAnd := filter["$and"]
	assert.False(t, hasAnd, "identical scope and accessibleBy collapse into one group")
	_, hasOr := filter["$or"]
	assert.True(t, hasOr)
}

func TestSortSpec(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec(""))
	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, sortSpec(models.SortNewest))
	assert.Equal(t, bson.D{{Key: "average_rating", Value: -1}}, sortSpec(models.SortRating))
	assert.Equal(t, bson.D{{Key: "rating_count", Value: -1}}, sortSpec(models.SortPopular))
}

func TestParseRecordFilter(t *testing.T) {
	owner := primitive.NewObjectID()
	r := httptest.NewRequest("GET", "/api/prompts?page=2&limit=20&category=Code&search=lint&visibility=public,shared&userId="+owner.Hex()+"&sort=rating", nil)

	f, err := ParseRecordFilter(r)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), f.Page)
	assert.Equal(t, int64(20), f.Limit)
	assert.Equal(t, "Code", f.Category)
	assert.Equal(t, "lint", f.Search)
	assert.Equal(t, []models.Visibility{models.VisibilityPublic, models.VisibilityShared}, f.Visibility)
	assert.Equal(t, owner, *f.UserID)
	assert.Equal(t, models.SortRating, f.Sort)
}

func TestParseRecordFilterRejectsBadInput(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/prompts?page=abc", nil)
	_, err := ParseRecordFilter(r)
	assert.ErrorIs(t, err, ErrValidation)

	r = httptest.NewRequest("GET", "/api/prompts?visibility=internal", nil)
	_, err = ParseRecordFilter(r)
	assert.ErrorIs(t, err, ErrValidation)

	r = httptest.NewRequest("GET", "/api/prompts?userId=nothex", nil)
	_, err = ParseRecordFilter(r)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseRecordFilterDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/prompts", nil)
	f, err := ParseRecordFilter(r)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), f.Page)
	assert.Equal(t, int64(models.DefaultPageSize), f.Limit)
}

package services

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"smartaitools/internal/models"
)

// ParseRecordFilter reads the listing query parameters into a filter set.
// Malformed parameters surface as ErrValidation.
func ParseRecordFilter(r *http.Request) (models.RecordFilter, error) {
	q := r.URL.Query()
	f := models.RecordFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	}

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil {
			return f, validationErr("page must be an integer")
		}
		f.Page = page
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil {
			return f, validationErr("limit must be an integer")
		}
		f.Limit = limit
	}

	if visibilityStr := q.Get("visibility"); visibilityStr != "" {
		for _, part := range strings.Split(visibilityStr, ",") {
			v := models.Visibility(strings.TrimSpace(part))
			if !v.IsValid() {
				return f, validationErr("invalid visibility %q", part)
			}
			f.Visibility = append(f.Visibility, v)
		}
	}

	idParams := []struct {
		name string
		dest **primitive.ObjectID
	}{
		{"userId", &f.UserID},
		{"favorites", &f.Favorites},
		{"sharedWith", &f.SharedWith},
		{"accessibleBy", &f.AccessibleBy},
	}
	for _, p := range idParams {
		if idStr := q.Get(p.name); idStr != "" {
			id, err := primitive.ObjectIDFromHex(idStr)
			if err != nil {
				return f, validationErr("%s must be a hexadecimal ObjectID", p.name)
			}
			*p.dest = &id
		}
	}

	f.Normalize()
	return f, nil
}

// buildRecordFilter composes the Mongo predicate for a listing request. All
// fields conjoin; free-text search and accessibleBy each expand into an OR
// group, and when both are present the two groups are conjoined under $and —
// neither ever overwrites the other.
func buildRecordFilter(f models.RecordFilter, categoryField string, searchFields []string) bson.M {
	filter := bson.M{}
	var orGroups [][]bson.M

	switch len(f.Visibility) {
	case 0:
	case 1:
		filter["visibility"] = f.Visibility[0]
	default:
		filter["visibility"] = bson.M{"$in": f.Visibility}
	}

	if f.UserID != nil {
		filter["created_by"] = *f.UserID
	}
	if f.Favorites != nil {
		filter["ratings.user"] = *f.Favorites
	}
	if f.SharedWith != nil {
		filter["shared_with"] = *f.SharedWith
	}
	if f.Category != "" {
		filter[categoryField] = f.Category
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		group := make([]bson.M, 0, len(searchFields))
		for _, field := range searchFields {
			group = append(group, bson.M{field: pattern})
		}
		orGroups = append(orGroups, group)
	}

	if f.AccessibleBy != nil {
		orGroups = append(orGroups, accessClause(*f.AccessibleBy))
	}
	if f.Scope != nil && (f.AccessibleBy == nil || *f.AccessibleBy != *f.Scope) {
		orGroups = append(orGroups, accessClause(*f.Scope))
	}

	switch len(orGroups) {
	case 0:
	case 1:
		filter["$or"] = orGroups[0]
	default:
		groups := make(bson.A, 0, len(orGroups))
		for _, g := range orGroups {
			groups = append(groups, bson.M{"$or": g})
		}
		filter["$and"] = groups
	}
	return filter
}

// accessClause is the disjunction of ways an identity can read a record.
func accessClause(id primitive.ObjectID) []bson.M {
	return []bson.M{
		{"visibility": models.VisibilityPublic},
		{"created_by": id},
		{"shared_with": id},
	}
}

func BuildPromptFilter(f models.RecordFilter) bson.M {
	return buildRecordFilter(f, "category", []string{"title", "description", "tags"})
}

func BuildToolFilter(f models.RecordFilter) bson.M {
	return buildRecordFilter(f, "categories", []string{"name", "description", "tags"})
}

// sortSpec maps a sort key to a Mongo sort document, defaulting to
// newest-created-first.
func sortSpec(key string) bson.D {
	switch key {
	case models.SortRating:
		return bson.D{{Key: "average_rating", Value: -1}}
	case models.SortPopular:
		return bson.D{{Key: "rating_count", Value: -1}}
	case models.SortName:
		return bson.D{{Key: "title", Value: 1}, {Key: "name", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// applyReadScope forces a read constraint on listings so they can never
// enumerate records the requester could not fetch individually. Anonymous
// callers see only public records; authenticated callers are scoped to
// records accessible to them, conjoined with whatever explicit filters the
// request carries.
func applyReadScope(f *models.RecordFilter, requester primitive.ObjectID) {
	if requester.IsZero() {
		f.Visibility = []models.Visibility{models.VisibilityPublic}
		f.AccessibleBy = nil
		f.Scope = nil
		return
	}
	f.Scope = &requester
}

package client

import (
	"net/url"
	"sort"
	"strconv"
)

// Query mirrors the listing endpoint's parameters. The zero value lists the
// first default-sized page with no filters.
type Query struct {
	Page         int64
	Limit        int64
	Category     string
	Search       string
	Visibility   []string
	UserID       string
	Favorites    string
	SharedWith   string
	AccessibleBy string
	Sort         string
}

// Values encodes the query as URL parameters. Only set fields are included.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.FormatInt(q.Page, 10))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.FormatInt(q.Limit, 10))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Visibility) > 0 {
		vis := append([]string(nil), q.Visibility...)
		sort.Strings(vis)
		for i, s := range vis {
			if i == 0 {
				v.Set("visibility", s)
			} else {
				v.Set("visibility", v.Get("visibility")+","+s)
			}
		}
	}
	if q.UserID != "" {
		v.Set("userId", q.UserID)
	}
	if q.Favorites != "" {
		v.Set("favorites", q.Favorites)
	}
	if q.SharedWith != "" {
		v.Set("sharedWith", q.SharedWith)
	}
	if q.AccessibleBy != "" {
		v.Set("accessibleBy", q.AccessibleBy)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// CacheKey returns a canonical string for the filter set plus page, so two
// equivalent queries always hit the same cache entry. url.Values.Encode sorts
// by key and the visibility set is sorted before encoding.
func (q Query) CacheKey() string {
	return q.Values().Encode()
}

package client

import (
	"context"
	"sort"
	"strings"
	"sync"

	"smartaitools/internal/models"
)

// Local sort keys for the in-memory refinement pass.
const (
	SortByRating  = "rating"
	SortByReviews = "reviews"
	SortByName    = "name"
)

// LocalFilter is the in-memory refinement applied on top of server-side
// filtering. It only ever narrows or reorders already-loaded records; it is
// never the source of truth for pagination.
type LocalFilter struct {
	Search     string
	Category   string
	Pricing    string
	SortBy     string
	Descending bool
}

func matchesSearch(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	needle = strings.ToLower(needle)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ToolBrowser caches tool pages per filter set and derives facet views from
// whatever is currently loaded.
type ToolBrowser struct {
	client     *Client
	mu         sync.Mutex
	cache      map[string]*models.ToolPage
	generation uint64
}

func NewToolBrowser(c *Client) *ToolBrowser {
	return &ToolBrowser{client: c, cache: make(map[string]*models.ToolPage)}
}

// LoadPage serves the page from cache when the same filter set and page were
// fetched before; otherwise it fetches and caches. If another LoadPage starts
// before this one resolves, the late response is dropped with ErrStale. A
// fetch error leaves previously cached pages intact.
func (b *ToolBrowser) LoadPage(ctx context.Context, q Query) (*models.ToolPage, error) {
	key := q.CacheKey()

	b.mu.Lock()
	if page, ok := b.cache[key]; ok {
		b.mu.Unlock()
		return page, nil
	}
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	page, err := b.client.ListTools(ctx, q)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	b.cache[key] = page
	return page, nil
}

// Invalidate drops every cached page. Call it on logout or an explicit
// refresh.
func (b *ToolBrowser) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[string]*models.ToolPage)
}

// Loaded returns every record across all cached pages.
func (b *ToolBrowser) Loaded() []models.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Tool
	for _, page := range b.cache {
		out = append(out, page.Records...)
	}
	return out
}

// Categories is the alphabetical union of category values across loaded
// records.
func (b *ToolBrowser) Categories() []string {
	set := make(map[string]bool)
	for _, t := range b.Loaded() {
		for _, c := range t.Categories {
			set[c] = true
		}
	}
	return sortedKeys(set)
}

// PricingOptions is the alphabetical union of pricing values across loaded
// records.
func (b *ToolBrowser) PricingOptions() []string {
	set := make(map[string]bool)
	for _, t := range b.Loaded() {
		if t.Pricing != "" {
			set[string(t.Pricing)] = true
		}
	}
	return sortedKeys(set)
}

// CategoryStats counts loaded records per category value.
func (b *ToolBrowser) CategoryStats() map[string]int {
	stats := make(map[string]int)
	for _, t := range b.Loaded() {
		for _, c := range t.Categories {
			stats[c]++
		}
	}
	return stats
}

// Refine applies the local filter/sort pass over loaded records.
func (b *ToolBrowser) Refine(f LocalFilter) []models.Tool {
	var out []models.Tool
	for _, t := range b.Loaded() {
		if !matchesSearch(f.Search, t.Name, t.Description) {
			continue
		}
		if f.Category != "" && !containsString(t.Categories, f.Category) {
			continue
		}
		if f.Pricing != "" && string(t.Pricing) != f.Pricing {
			continue
		}
		out = append(out, t)
	}

	less := func(i, j int) bool { return out[i].Name < out[j].Name }
	switch f.SortBy {
	case SortByRating:
		less = func(i, j int) bool { return out[i].AverageRating < out[j].AverageRating }
	case SortByReviews:
		less = func(i, j int) bool { return out[i].RatingCount < out[j].RatingCount }
	}
	if f.Descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(out, less)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PromptBrowser mirrors ToolBrowser for prompt records. Prompts carry a
// single category and no pricing, so the pricing facet does not apply.
type PromptBrowser struct {
	client     *Client
	mu         sync.Mutex
	cache      map[string]*models.PromptPage
	generation uint64
}

func NewPromptBrowser(c *Client) *PromptBrowser {
	return &PromptBrowser{client: c, cache: make(map[string]*models.PromptPage)}
}

func (b *PromptBrowser) LoadPage(ctx context.Context, q Query) (*models.PromptPage, error) {
	key := q.CacheKey()

	b.mu.Lock()
	if page, ok := b.cache[key]; ok {
		b.mu.Unlock()
		return page, nil
	}
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	page, err := b.client.ListPrompts(ctx, q)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	b.cache[key] = page
	return page, nil
}

func (b *PromptBrowser) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = make(map[string]*models.PromptPage)
}

func (b *PromptBrowser) Loaded() []models.Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []models.Prompt
	for _, page := range b.cache {
		out = append(out, page.Records...)
	}
	return out
}

func (b *PromptBrowser) Categories() []string {
	set := make(map[string]bool)
	for _, p := range b.Loaded() {
		if p.Category != "" {
			set[p.Category] = true
		}
	}
	return sortedKeys(set)
}

func (b *PromptBrowser) CategoryStats() map[string]int {
	stats := make(map[string]int)
	for _, p := range b.Loaded() {
		if p.Category != "" {
			stats[p.Category]++
		}
	}
	return stats
}

func (b *PromptBrowser) Refine(f LocalFilter) []models.Prompt {
	var out []models.Prompt
	for _, p := range b.Loaded() {
		if !matchesSearch(f.Search, p.Title, p.Description) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}

	less := func(i, j int) bool { return out[i].Title < out[j].Title }
	switch f.SortBy {
	case SortByRating:
		less = func(i, j int) bool { return out[i].AverageRating < out[j].AverageRating }
	case SortByReviews:
		less = func(i, j int) bool { return out[i].RatingCount < out[j].RatingCount }
	}
	if f.Descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(out, less)
	return out
}

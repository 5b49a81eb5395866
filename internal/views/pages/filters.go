package pages

import (
	"net/http"
	"strconv"
	"strings"

	"posdash/internal/services"
)

// ListFilters captures the list controls carried in the query string.
type ListFilters struct {
	Query     string
	SortBy    string
	Order     string
	ProductID int64
}

// FiltersFromRequest reads q, sort, order and product_id.
func FiltersFromRequest(r *http.Request) ListFilters {
	if r == nil {
		return ListFilters{}
	}
	q := r.URL.Query()
	return ListFilters{
		Query:     strings.TrimSpace(q.Get("q")),
		SortBy:    strings.TrimSpace(q.Get("sort")),
		Order:     strings.ToLower(strings.TrimSpace(q.Get("order"))),
		ProductID: ParseID(q.Get("product_id")),
	}
}

// Options converts the filters to service list options.
func (f ListFilters) Options() services.ListOptions {
	return services.ListOptions{
		Search: f.Query,
		SortBy: f.SortBy,
		Order:  services.Order(f.Order),
	}
}

// RecipeFilter converts the filters for the recipe overview.
func (f ListFilters) RecipeFilter() services.RecipeFilter {
	return services.RecipeFilter{Search: f.Query, ProductID: f.ProductID}
}

// Encode renders the filters back as a query string, empty when unset.
func (f ListFilters) Encode() string {
	var parts []string
	add := func(k, v string) {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	add("q", urlQueryEscape(f.Query))
	add("sort", urlQueryEscape(f.SortBy))
	add("order", urlQueryEscape(f.Order))
	if f.ProductID > 0 {
		add("product_id", strconv.FormatInt(f.ProductID, 10))
	}
	return strings.Join(parts, "&")
}

// FindByID returns the first item whose id matches.
func FindByID[T any](items []T, id int64, idOf func(T) int64) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

package shared

import (
	"net/http"
	"strconv"
	"strings"
)

// ListFilters carries common list-endpoint query parameters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string
}

// ParseListFilters reads the common list query parameters off a request.
func ParseListFilters(r *http.Request) ListFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  strings.TrimSpace(q.Get("search")),
		SortBy:  q.Get("sortBy"),
		SortDir: q.Get("sortDir"),
	}.Normalized()
}

// Offset converts page/limit into a query offset.
func (f ListFilters) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Normalized().Limit
}

// Normalized clamps page and limit into usable ranges.
func (f ListFilters) Normalized() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 25
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	return f
}

// Page slices items down to the window the filters describe.
func Page[T any](items []T, f ListFilters) []T {
	f = f.Normalized()
	start := f.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + f.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseListFiltersDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/accounts", nil)
	f := ParseListFilters(r)
	require.Equal(t, 1, f.Page)
	require.Equal(t, 25, f.Limit)
	require.Empty(t, f.Search)
}

func TestParseListFiltersClamps(t *testing.T) {
	r := httptest.NewRequest("GET", "/accounts?page=-3&limit=9999&search=%20cash%20", nil)
	f := ParseListFilters(r)
	require.Equal(t, 1, f.Page)
	require.Equal(t, 200, f.Limit)
	require.Equal(t, "cash", f.Search)
}

func TestPageWindows(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	require.Equal(t, []int{3, 4}, Page(items, ListFilters{Page: 2, Limit: 2}))
	require.Equal(t, []int{5}, Page(items, ListFilters{Page: 3, Limit: 2}))
	require.Empty(t, Page(items, ListFilters{Page: 4, Limit: 2}))
	require.Equal(t, items, Page(items, ListFilters{}))
}

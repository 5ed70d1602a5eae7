package ui

import (
	"net/http"
	"net/url"
	"strings"

	"finitefield.org/stock-admin/internal/admin/inventory"
)

// parseViewState reads category, sort and q from the query string or a posted
// form that included the filter bar.
func parseViewState(r *http.Request) inventory.ViewState {
	state := inventory.DefaultViewState()
	if err := r.ParseForm(); err != nil {
		return state
	}
	if category := strings.TrimSpace(r.Form.Get("category")); category != "" {
		state.Category = category
	}
	state.Sort = inventory.ParseSortMode(r.Form.Get("sort"))
	state.Query = strings.TrimSpace(r.Form.Get("q"))
	return state
}

// canonicalQuery encodes the non-default parts of state.
func canonicalQuery(state inventory.ViewState) string {
	values := url.Values{}
	if c := strings.TrimSpace(state.Category); c != "" && !strings.EqualFold(c, inventory.CategoryAll) {
		values.Set("category", c)
	}
	if state.Sort != "" && state.Sort != inventory.SortNone {
		values.Set("sort", string(state.Sort))
	}
	if state.Query != "" {
		values.Set("q", state.Query)
	}
	return values.Encode()
}

func canonicalURL(page string, state inventory.ViewState) string {
	if q := canonicalQuery(state); q != "" {
		return page + "?" + q
	}
	return page
}

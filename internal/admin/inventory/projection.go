package inventory

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

// CategoryAll disables the category filter.
const CategoryAll = "all"

// SortMode orders the projection by stock.
type SortMode string

const (
	SortNone      SortMode = "none"
	SortStockDesc SortMode = "stock_desc"
	SortStockAsc  SortMode = "stock_asc"
)

// ParseSortMode maps a query value to a SortMode, defaulting to SortNone.
func ParseSortMode(raw string) SortMode {
	switch SortMode(strings.ToLower(strings.TrimSpace(raw))) {
	case SortStockDesc:
		return SortStockDesc
	case SortStockAsc:
		return SortStockAsc
	default:
		return SortNone
	}
}

// ViewState captures the operator's current filter selections.
type ViewState struct {
	Category string
	Sort     SortMode
	Query    string
}

// DefaultViewState shows everything in remote order.
func DefaultViewState() ViewState {
	return ViewState{Category: CategoryAll, Sort: SortNone}
}

func (v ViewState) allCategories() bool {
	c := strings.TrimSpace(v.Category)
	return c == "" || strings.EqualFold(c, CategoryAll)
}

// CategoryOption is an entry for the category selector.
type CategoryOption struct {
	// Value is the normalized category used for filtering.
	Value string
	// Label is the first casing seen in the catalog.
	Label string
}

// Project filters by category, then by title query, then stable-sorts by stock.
// The input slice is never modified.
func Project(products []catalog.Product, state ViewState) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))

	wantCategory := ""
	if !state.allCategories() {
		wantCategory = normalizeCategory(state.Category)
	}
	query := foldText(strings.TrimSpace(state.Query))

	for _, p := range products {
		if wantCategory != "" && normalizeCategory(p.Category) != wantCategory {
			continue
		}
		if query != "" && !strings.Contains(foldText(p.Title), query) {
			continue
		}
		out = append(out, p)
	}

	switch state.Sort {
	case SortStockDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Stock > out[j].Stock })
	case SortStockAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	}
	return out
}

// Categories lists the distinct categories of the full catalog, sorted for tag.
// Rows without a category are skipped.
func Categories(products []catalog.Product, tag language.Tag) []CategoryOption {
	seen := make(map[string]struct{}, len(products))
	options := make([]CategoryOption, 0)
	for _, p := range products {
		key := normalizeCategory(p.Category)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		options = append(options, CategoryOption{Value: key, Label: strings.TrimSpace(p.Category)})
	}

	// Collators are not safe for concurrent use.
	coll := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		return coll.CompareString(options[i].Label, options[j].Label) < 0
	})
	return options
}

// Reconcile resets the category filter to CategoryAll when the selected
// category is no longer present in options.
func Reconcile(state ViewState, options []CategoryOption) ViewState {
	if state.Sort == "" {
		state.Sort = SortNone
	}
	if state.allCategories() {
		state.Category = CategoryAll
		return state
	}
	want := normalizeCategory(state.Category)
	for _, opt := range options {
		if opt.Value == want {
			state.Category = opt.Value
			return state
		}
	}
	state.Category = CategoryAll
	return state
}

func normalizeCategory(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// foldText lowercases s and strips combining marks so "Café" matches "cafe".
func foldText(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

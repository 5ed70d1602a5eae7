package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

func product(id, title, category string, stock int) catalog.Product {
	return catalog.Product{
		DisplayID:   id,
		BusinessKey: title,
		Title:       title,
		Category:    category,
		Stock:       stock,
		Price:       decimal.NewFromInt(1),
	}
}

func displayIDs(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.DisplayID)
	}
	return out
}

func TestProjectDefaultIsIdentity(t *testing.T) {
	t.Parallel()

	list := []catalog.Product{
		product("a", "Zeta", "X", 3),
		product("b", "Alfa", "Y", 1),
	}
	got := Project(list, DefaultViewState())
	require.Equal(t, list, got)
}

func TestProjectStableStockSort(t *testing.T) {
	t.Parallel()

	list := []catalog.Product{
		product("a", "A", "", 3),
		product("b", "B", "", 0),
		product("c", "C", "", 9),
		product("d", "D", "", 3),
	}

	desc := Project(list, ViewState{Category: CategoryAll, Sort: SortStockDesc})
	require.Equal(t, []string{"c", "a", "d", "b"}, displayIDs(desc))

	asc := Project(list, ViewState{Category: CategoryAll, Sort: SortStockAsc})
	require.Equal(t, []string{"b", "a", "d", "c"}, displayIDs(asc))

	require.Equal(t, []string{"a", "b", "c", "d"}, displayIDs(list), "input must not be reordered")
}

func TestProjectCategoryFilterNormalizes(t *testing.T) {
	t.Parallel()

	list := []catalog.Product{
		product("a", "A", "Hot  Drinks", 1),
		product("b", "B", " hot drinks ", 1),
		product("c", "C", "Bakery", 1),
	}
	got := Project(list, ViewState{Category: "HOT DRINKS"})
	require.Equal(t, []string{"a", "b"}, displayIDs(got))
}

func TestProjectQueryIgnoresAccentsAndCase(t *testing.T) {
	t.Parallel()

	list := []catalog.Product{
		product("a", "Café de olla", "Bebidas", 1),
		product("b", "Té verde", "Bebidas", 1),
		product("c", "Cafetera", "Hogar", 1),
	}

	got := Project(list, ViewState{Category: CategoryAll, Query: "CAFE"})
	require.Equal(t, []string{"a", "c"}, displayIDs(got))

	got = Project(list, ViewState{Category: "bebidas", Query: "té"})
	require.Equal(t, []string{"b"}, displayIDs(got))
}

func TestCategoriesFirstSeenCasingAndCollation(t *testing.T) {
	t.Parallel()

	list := []catalog.Product{
		product("a", "A", "panadería", 1),
		product("b", "B", "Bebidas", 1),
		product("c", "C", "PANADERÍA", 1),
		product("d", "D", "", 1),
		product("e", "E", "abarrotes", 1),
	}
	got := Categories(list, language.Spanish)
	require.Equal(t, []CategoryOption{
		{Value: "abarrotes", Label: "abarrotes"},
		{Value: "bebidas", Label: "Bebidas"},
		{Value: "panadería", Label: "panadería"},
	}, got)
}

func TestReconcileResetsMissingCategory(t *testing.T) {
	t.Parallel()

	options := []CategoryOption{{Value: "tools", Label: "Tools"}}

	kept := Reconcile(ViewState{Category: " TOOLS ", Sort: SortStockAsc}, options)
	require.Equal(t, "tools", kept.Category)
	require.Equal(t, SortStockAsc, kept.Sort)

	reset := Reconcile(ViewState{Category: "gone"}, options)
	require.Equal(t, CategoryAll, reset.Category)
	require.Equal(t, SortNone, reset.Sort)
}

func TestParseSortMode(t *testing.T) {
	t.Parallel()

	require.Equal(t, SortStockDesc, ParseSortMode("stock_desc"))
	require.Equal(t, SortStockAsc, ParseSortMode(" STOCK_ASC "))
	require.Equal(t, SortNone, ParseSortMode("price"))
}

package inventory

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finitefield.org/stock-admin/internal/admin/catalog"
	admininventory "finitefield.org/stock-admin/internal/admin/inventory"
)

func render(t *testing.T, c templ.Component) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.Bytes()
}

func parse(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestTableEscapesProductText(t *testing.T) {
	t.Parallel()

	snap := admininventory.Snapshot{
		State: admininventory.DefaultViewState(),
		Products: []catalog.Product{{
			DisplayID:   "p-0",
			BusinessKey: `<img src=x onerror=alert(1)>`,
			Title:       `<img src=x onerror=alert(1)>`,
			Category:    "Bebidas",
			Stock:       -2,
			Price:       decimal.NewFromInt(3),
		}},
		Count: 1,
	}
	body := render(t, Table(BuildTable(NewPaths("/admin"), snap, "$", "tok", "")))
	require.NotContains(t, string(body), "<img src=x")

	doc := parse(t, body)
	card := doc.Find("article.product-card")
	require.Equal(t, `<img src=x onerror=alert(1)>`, card.Find(".product-title").Text())
	require.Equal(t, "0", card.Find(".stock-count").Text())
	require.Equal(t, "Sin stock", card.Find(".stock-badge").Text())
	require.Equal(t, "tok", card.Find(`input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestTableEmptyCatalog(t *testing.T) {
	t.Parallel()

	snap := admininventory.Snapshot{State: admininventory.DefaultViewState()}
	doc := parse(t, render(t, Table(BuildTable(NewPaths("/"), snap, "$", "", ""))))
	require.Equal(t, "No hay productos en el inventario.", doc.Find(".empty-state").Text())
	require.Equal(t, "$0.00", doc.Find(".stat-value").Text())
}

func TestDeleteModalSteps(t *testing.T) {
	t.Parallel()

	paths := NewPaths("/admin")
	data := DeleteModalData{
		TicketID:   "01HZX",
		Title:      "Pan integral",
		Literal:    "ELIMINAR",
		ProceedURL: paths.Delete("01HZX", "proceed"),
		ConfirmURL: paths.Delete("01HZX", "confirm"),
		CancelURL:  paths.Delete("01HZX", "cancel"),
	}

	doc := parse(t, render(t, DeleteModal(data)))
	require.Equal(t, "proceed", doc.Find(".delete-modal").AttrOr("data-step", ""))
	require.Equal(t, "/admin/inventory/deletions/01HZX/proceed", doc.Find("form.delete-proceed").AttrOr("hx-post", ""))
	require.Equal(t, 0, doc.Find(`input[name="confirmation"]`).Length())

	data.Confirming = true
	doc = parse(t, render(t, DeleteModal(data)))
	require.Equal(t, "confirm", doc.Find(".delete-modal").AttrOr("data-step", ""))
	require.Equal(t, "ELIMINAR", doc.Find(".delete-literal").Text())
	require.Equal(t, 1, doc.Find(`input[name="confirmation"]`).Length())
}

func TestPathsEncodeKeys(t *testing.T) {
	t.Parallel()

	paths := NewPaths("/admin/")
	require.Equal(t, "/admin/inventory/products/edit?key=Caf%C3%A9+%26+pan", paths.Edit("Café & pan"))
	require.Equal(t, "/admin/inventory/stock?direction=add&key=T%C3%A9", paths.StockAdjust("Té", "add"))
	require.Equal(t, "/admin/inventory/export/csv?category=bebidas", paths.Export("csv", "category=bebidas"))
}

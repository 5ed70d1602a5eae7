package inventory

import (
	"net/url"
	"strconv"
	"strings"

	"finitefield.org/stock-admin/internal/admin/catalog"
	"finitefield.org/stock-admin/internal/admin/export"
	admininventory "finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/admin/templates/helpers"
)

// Element ids shared by components and htmx targets.
const (
	TableID          = "inventory-table"
	FiltersID        = "inventory-filters"
	CategorySelectID = "category-filter"
	ModalID          = "modal"
)

// Product form field names. They differ from the filter bar's names because
// forms post with the filters included.
const (
	FieldTitle    = "title"
	FieldCategory = "product_category"
	FieldImage    = "image_url"
	FieldStock    = "stock"
	FieldPrice    = "price"
)

// Paths resolves every inventory route under a base path.
type Paths struct {
	Page        string
	Table       string
	NewProduct  string
	Products    string
	EditProduct string
	Stock       string
	Deletions   string
	Refresh     string
	exportBase  string
}

// NewPaths builds the route set rooted at base.
func NewPaths(base string) Paths {
	join := func(suffix string) string {
		b := strings.TrimRight(strings.TrimSpace(base), "/")
		return b + suffix
	}
	return Paths{
		Page:        join("/inventory"),
		Table:       join("/inventory/table"),
		NewProduct:  join("/inventory/products/new"),
		Products:    join("/inventory/products"),
		EditProduct: join("/inventory/products/edit"),
		Stock:       join("/inventory/stock"),
		Deletions:   join("/inventory/deletions"),
		Refresh:     join("/inventory/refresh"),
		exportBase:  join("/inventory/export/"),
	}
}

// Export returns the download URL for format carrying the current filters.
func (p Paths) Export(format export.Format, rawQuery string) string {
	u := p.exportBase + string(format)
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// Delete returns the URL for a step of the delete ticket id.
func (p Paths) Delete(id, step string) string {
	return p.Deletions + "/" + url.PathEscape(id) + "/" + step
}

// Edit returns the edit form URL for key.
func (p Paths) Edit(key string) string {
	return p.EditProduct + "?" + url.Values{"key": {key}}.Encode()
}

// StockAdjust returns the stock form URL for key and direction.
func (p Paths) StockAdjust(key, direction string) string {
	return p.Stock + "?" + url.Values{"key": {key}, "direction": {direction}}.Encode()
}

// PageData is the payload for the full inventory page.
type PageData struct {
	Title       string
	Environment string
	Operator    string
	CSRFToken   string
	ThemeCSS    string
	Paths       Paths
	Filters     FiltersData
	Table       TableData
	ExportLinks []ExportLink
}

// ExportLink is a download offered on the page.
type ExportLink struct {
	Label string
	URL   string
}

// FiltersData drives the filter bar.
type FiltersData struct {
	Categories []SelectOption
	Sorts      []SelectOption
	Query      string
}

// SelectOption represents a select menu option.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// StatsData summarises the full catalog.
type StatsData struct {
	Total      int
	LowCount   int
	TotalValue string
}

// TableData is the payload for the swappable inventory region.
type TableData struct {
	Paths        Paths
	CSRFToken    string
	Cards        []CardData
	Stats        StatsData
	Categories   []SelectOption
	Error        string
	EmptyMessage string
	LimitWarning string
	// OOB marks fragment responses that also replace the category selector.
	OOB          bool
}

// CardData is one rendered product.
type CardData struct {
	DisplayID   string
	BusinessKey string
	Title       string
	Category    string
	ImageURL    string
	Stock       int
	StockLabel  string
	StockTone   string
	Price       string
	Value       string
	EditURL     string
	AddURL      string
	SubtractURL string
}

// FormData drives the create and edit modal.
type FormData struct {
	Editing     bool
	Action      string
	CSRFToken   string
	BusinessKey string
	Title       string
	Category    string
	ImageURL    string
	Stock       string
	Price       string
	Categories  []string
	Error       string
	ErrorField  string
}

// StockFormData drives the stock adjustment modal.
type StockFormData struct {
	Action       string
	CSRFToken    string
	BusinessKey  string
	Title        string
	CurrentStock int
	Direction    string
	Delta        string
	Error        string
}

// DeleteModalData drives the two-step delete modal.
type DeleteModalData struct {
	TicketID   string
	Title      string
	Confirming bool
	Literal    string
	Typed      string
	ProceedURL string
	ConfirmURL string
	CancelURL  string
	CSRFToken  string
	Error      string
}

// BuildTable maps a controller snapshot to the table payload.
func BuildTable(paths Paths, snap admininventory.Snapshot, symbol, csrf, errMsg string) TableData {
	cards := make([]CardData, 0, len(snap.Products))
	for _, p := range snap.Products {
		cards = append(cards, buildCard(paths, p, symbol))
	}

	data := TableData{
		Paths:      paths,
		CSRFToken:  csrf,
		Cards:      cards,
		Categories: categoryOptions(snap),
		Error:      errMsg,
		Stats: StatsData{
			Total:      snap.Stats.Total,
			LowCount:   snap.Stats.LowCount,
			TotalValue: helpers.Money(snap.Stats.TotalValue, symbol),
		},
	}
	if len(cards) == 0 {
		if snap.Count == 0 {
			data.EmptyMessage = "No hay productos en el inventario."
		} else {
			data.EmptyMessage = "Ningún producto coincide con los filtros."
		}
	}
	if snap.LimitReached {
		data.LimitWarning = LimitMessage(snap.RecordLimit)
	}
	return data
}

// BuildPage assembles the full page payload around table.
func BuildPage(title, environment, operator, csrf, themeCSS string, paths Paths, snap admininventory.Snapshot, table TableData, rawQuery string) PageData {
	return PageData{
		Title:       title,
		Environment: environment,
		Operator:    operator,
		CSRFToken:   csrf,
		ThemeCSS:    themeCSS,
		Paths:       paths,
		Filters: FiltersData{
			Categories: table.Categories,
			Sorts:      sortOptions(snap.State.Sort),
			Query:      snap.State.Query,
		},
		Table: table,
		ExportLinks: []ExportLink{
			{Label: "CSV", URL: paths.Export(export.FormatCSV, rawQuery)},
			{Label: "Excel", URL: paths.Export(export.FormatXLSX, rawQuery)},
		},
	}
}

// LimitMessage explains that no more products can be added.
func LimitMessage(limit int) string {
	return "Se alcanzó el límite de " + strconv.Itoa(limit) + " registros. No se pueden agregar productos."
}

// CategoryLabels lists category labels for the form's datalist.
func CategoryLabels(options []admininventory.CategoryOption) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		out = append(out, o.Label)
	}
	return out
}

func buildCard(paths Paths, p catalog.Product, symbol string) CardData {
	stock := p.DisplayStock()
	label, tone := helpers.StockBadge(stock)
	return CardData{
		DisplayID:   p.DisplayID,
		BusinessKey: p.BusinessKey,
		Title:       p.Title,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       stock,
		StockLabel:  label,
		StockTone:   tone,
		Price:       helpers.Money(p.Price, symbol),
		Value:       helpers.Money(p.Value(), symbol),
		EditURL:     paths.Edit(p.BusinessKey),
		AddURL:      paths.StockAdjust(p.BusinessKey, "add"),
		SubtractURL: paths.StockAdjust(p.BusinessKey, "subtract"),
	}
}

func categoryOptions(snap admininventory.Snapshot) []SelectOption {
	current := snap.State.Category
	opts := make([]SelectOption, 0, len(snap.Categories)+1)
	opts = append(opts, SelectOption{
		Value:    admininventory.CategoryAll,
		Label:    "Todas las categorías",
		Selected: strings.EqualFold(current, admininventory.CategoryAll) || current == "",
	})
	for _, c := range snap.Categories {
		opts = append(opts, SelectOption{Value: c.Value, Label: c.Label, Selected: c.Value == current})
	}
	return opts
}

func sortOptions(current admininventory.SortMode) []SelectOption {
	modes := []struct {
		mode  admininventory.SortMode
		label string
	}{
		{admininventory.SortNone, "Orden original"},
		{admininventory.SortStockDesc, "Mayor inventario"},
		{admininventory.SortStockAsc, "Menor inventario"},
	}
	out := make([]SelectOption, 0, len(modes))
	for _, m := range modes {
		out = append(out, SelectOption{Value: string(m.mode), Label: m.label, Selected: m.mode == current})
	}
	return out
}

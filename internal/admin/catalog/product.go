package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Column names used by the spreadsheet endpoint.
const (
	FieldCategory = "CATEGORIA"
	FieldImage    = "IMAGEN"
	FieldTitle    = "PRODUCTO"
	FieldStock    = "INVENTARIO"
	FieldPrice    = "PRECIO"
)

// UntitledProduct is shown when a row carries no product name.
const UntitledProduct = "Sin título"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Record is one raw row as returned by the endpoint. Values may be strings,
// numbers, or anything else the sheet produced.
type Record map[string]any

// Product is the normalized catalog entry used throughout the admin.
type Product struct {
	// DisplayID identifies the row within a single fetch only.
	DisplayID string
	// BusinessKey locates the row remotely for update and delete.
	BusinessKey string
	Title       string
	Category    string
	ImageURL    string
	// Stock is kept as reported, even when the sheet holds a negative value.
	Stock int
	Price decimal.Decimal
}

// DisplayStock clamps negative stock to zero for presentation.
func (p Product) DisplayStock() int {
	if p.Stock < 0 {
		return 0
	}
	return p.Stock
}

// Value returns stock multiplied by price.
func (p Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// Normalize maps a raw row at position index into a Product.
func Normalize(rec Record, index int) Product {
	category := recordString(rec, FieldCategory)
	rawTitle := recordString(rec, FieldTitle)
	title := rawTitle
	if title == "" {
		title = UntitledProduct
	}

	return Product{
		DisplayID:   displayID(category, title, index),
		BusinessKey: rawTitle,
		Title:       title,
		Category:    category,
		ImageURL:    ResolveImage(recordString(rec, FieldImage)),
		Stock:       truncateStock(ParseNumber(rec[FieldStock], 0)),
		Price:       ParseDecimal(rec[FieldPrice], decimal.Zero),
	}
}

func displayID(category, title string, index int) string {
	base := strings.ToLower(category + "__" + title)
	base = whitespaceRun.ReplaceAllString(base, "_")
	return base + "__" + strconv.Itoa(index)
}

func recordString(rec Record, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	switch v.(type) {
	case map[string]any, []any:
		// Sheets sometimes serialise empty rich cells as {}.
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// MaxStock is the largest stock count a row can hold.
const MaxStock = math.MaxInt32

func truncateStock(n float64) int {
	n = math.Trunc(n)
	if n > MaxStock {
		return MaxStock
	}
	if n < math.MinInt32 {
		return math.MinInt32
	}
	return int(n)
}

// Draft is the payload for creating a product.
type Draft struct {
	Title    string
	Category string
	ImageURL string
	Stock    int
	Price    decimal.Decimal
}

// Record converts the draft into the endpoint's column layout.
func (d Draft) Record() Record {
	return Record{
		FieldTitle:    d.Title,
		FieldCategory: d.Category,
		FieldImage:    d.ImageURL,
		FieldStock:    d.Stock,
		FieldPrice:    d.Price.InexactFloat64(),
	}
}

// Changes lists the fields to overwrite on an existing row; nil fields are left alone.
type Changes struct {
	Category *string
	ImageURL *string
	Stock    *int
	Price    *decimal.Decimal
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Category == nil && c.ImageURL == nil && c.Stock == nil && c.Price == nil
}

// Record converts the set fields into the endpoint's column layout.
func (c Changes) Record() Record {
	rec := Record{}
	if c.Category != nil {
		rec[FieldCategory] = *c.Category
	}
	if c.ImageURL != nil {
		rec[FieldImage] = *c.ImageURL
	}
	if c.Stock != nil {
		rec[FieldStock] = *c.Stock
	}
	if c.Price != nil {
		rec[FieldPrice] = c.Price.InexactFloat64()
	}
	return rec
}

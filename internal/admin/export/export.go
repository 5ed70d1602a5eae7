// Package export renders catalog projections as downloadable spreadsheets using
// the same column names as the remote sheet.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"finitefield.org/stock-admin/internal/admin/catalog"
)

// Format selects the download encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Inventario"

// ParseFormat maps a file extension or query value to a Format.
func ParseFormat(raw string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "."))) {
	case FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns a download name with base and the format's extension.
func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Row is one exported product. Key holds the raw sheet title, which is empty
// for untitled rows.
type Row struct {
	Category string `csv:"CATEGORIA"`
	Image    string `csv:"IMAGEN"`
	Key      string `csv:"PRODUCTO"`
	Stock    int    `csv:"INVENTARIO"`
	Price    string `csv:"PRECIO"`
}

var columns = []string{
	catalog.FieldCategory,
	catalog.FieldImage,
	catalog.FieldTitle,
	catalog.FieldStock,
	catalog.FieldPrice,
}

// Rows converts products into export rows, keeping their order.
func Rows(products []catalog.Product) []*Row {
	rows := make([]*Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, &Row{
			Category: p.Category,
			Image:    p.ImageURL,
			Key:      p.BusinessKey,
			Stock:    p.Stock,
			Price:    p.Price.StringFixed(2),
		})
	}
	return rows
}

// Write encodes products to w in format.
func Write(w io.Writer, format Format, products []catalog.Product) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, products)
	case FormatXLSX:
		return WriteXLSX(w, products)
	}
	return fmt.Errorf("export: unsupported format %q", format)
}

// WriteCSV writes a header row followed by one line per product.
func WriteCSV(w io.Writer, products []catalog.Product) error {
	if err := gocsv.Marshal(Rows(products), w); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook.
func WriteXLSX(w io.Writer, products []catalog.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("export: name sheet: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		row := []any{p.Category, p.ImageURL, p.BusinessKey, p.Stock, p.Price.InexactFloat64()}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}

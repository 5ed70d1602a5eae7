package helpers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"finitefield.org/stock-admin/internal/admin/catalog"
	"finitefield.org/stock-admin/internal/admin/inventory"
	"finitefield.org/stock-admin/internal/platform/config"
)

// Money formats amount with two decimals behind symbol.
func Money(amount decimal.Decimal, symbol string) string {
	return catalog.FormatMoney(amount, symbol)
}

// StockBadge returns the label and tone describing a stock level.
func StockBadge(stock int) (label, tone string) {
	switch {
	case stock <= 0:
		return "Sin stock", "danger"
	case stock <= inventory.LowStockThreshold:
		return "Stock bajo", "warning"
	default:
		return "En stock", "success"
	}
}

// BadgeClass maps semantic tones to utility classes.
func BadgeClass(tone string) string {
	switch tone {
	case "success":
		return "inline-flex items-center rounded-full bg-emerald-100 px-2 py-1 text-xs font-medium text-emerald-700"
	case "warning":
		return "inline-flex items-center rounded-full bg-amber-100 px-2 py-1 text-xs font-medium text-amber-700"
	case "danger":
		return "inline-flex items-center rounded-full bg-rose-100 px-2 py-1 text-xs font-medium text-rose-700"
	default:
		return "inline-flex items-center rounded-full bg-slate-100 px-2 py-1 text-xs font-medium text-slate-700"
	}
}

// ThemeStyle renders theme as CSS custom properties on :root.
func ThemeStyle(theme config.Theme) string {
	var b strings.Builder
	b.WriteString(":root{")
	fmt.Fprintf(&b, "--bg-color:%s;", theme.BackgroundColor)
	fmt.Fprintf(&b, "--card-color:%s;", theme.CardColor)
	fmt.Fprintf(&b, "--text-color:%s;", theme.TextColor)
	fmt.Fprintf(&b, "--primary-color:%s;", theme.PrimaryColor)
	fmt.Fprintf(&b, "--secondary-color:%s;", theme.SecondaryColor)
	fmt.Fprintf(&b, "--font-family:'%s',sans-serif;", theme.FontFamily)
	fmt.Fprintf(&b, "--font-size:%dpx;", theme.FontSize)
	b.WriteString("}")
	return b.String()
}

// SetRawQuery returns rawQuery with key set to value; an empty value removes key.
func SetRawQuery(rawQuery, key, value string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	if value == "" {
		values.Del(key)
	} else {
		values.Set(key, value)
	}
	return values.Encode()
}

// TextComponent returns a templ component that renders escaped text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}

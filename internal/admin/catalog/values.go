package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const defaultCurrencySymbol = "$"

// ParseNumber converts a loosely formatted value ("$1,234.50", " 12 ", 7) into a float.
// Everything except digits, '.' and '-' is stripped before parsing; grouping
// separators are removed, never reinterpreted. def is returned when nothing
// parseable remains or the result is not finite.
func ParseNumber(raw any, def float64) float64 {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return def
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	return n
}

// ParseDecimal applies the ParseNumber cleaning rules but keeps the exact decimal value.
func ParseDecimal(raw any, def decimal.Decimal) decimal.Decimal {
	cleaned := cleanNumeric(raw)
	if cleaned == "" {
		return def
	}
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return def
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return def
	}
	return d
}

// FormatMoney renders amount with exactly two decimals and no grouping, prefixed by symbol.
func FormatMoney(amount decimal.Decimal, symbol string) string {
	if strings.TrimSpace(symbol) == "" {
		symbol = defaultCurrencySymbol
	}
	return symbol + amount.StringFixed(2)
}

func cleanNumeric(raw any) string {
	if raw == nil {
		return ""
	}
	var s string
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		s = cast.ToString(raw)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRecord(t *testing.T) {
	t.Parallel()

	p := Normalize(Record{
		FieldCategory: " Tools ",
		FieldTitle:    "  Big Widget ",
		FieldStock:    "12.9",
		FieldPrice:    "$3.50",
		FieldImage:    "https://drive.google.com/file/d/XYZ/view",
	}, 4)

	require.Equal(t, "tools__big_widget__4", p.DisplayID)
	require.Equal(t, "Big Widget", p.BusinessKey)
	require.Equal(t, "Big Widget", p.Title)
	require.Equal(t, "Tools", p.Category)
	require.Equal(t, 12, p.Stock)
	require.True(t, p.Price.Equal(decimal.RequireFromString("3.5")))
	require.Equal(t, "https://drive.google.com/thumbnail?id=XYZ&sz=w1200", p.ImageURL)
}

func TestNormalizeMissingFields(t *testing.T) {
	t.Parallel()

	p := Normalize(Record{FieldStock: -3, FieldImage: map[string]any{}}, 0)

	require.Equal(t, UntitledProduct, p.Title)
	require.Equal(t, "", p.BusinessKey)
	require.Equal(t, "", p.Category)
	require.Equal(t, "", p.ImageURL)
	require.Equal(t, -3, p.Stock)
	require.Equal(t, 0, p.DisplayStock())
	require.True(t, p.Price.IsZero())
	require.Equal(t, "__sin_título__0", p.DisplayID)
}

func TestNormalizeDuplicatesGetDistinctIDs(t *testing.T) {
	t.Parallel()

	rec := Record{FieldCategory: "A", FieldTitle: "Same"}
	first := Normalize(rec, 0)
	second := Normalize(rec, 1)

	require.NotEqual(t, first.DisplayID, second.DisplayID)
	require.Equal(t, first.BusinessKey, second.BusinessKey)
}

func TestChangesRecordOmitsUnsetFields(t *testing.T) {
	t.Parallel()

	stock := 9
	rec := Changes{Stock: &stock}.Record()
	require.Equal(t, Record{FieldStock: 9}, rec)
	require.True(t, Changes{}.Empty())
}

package inventory

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductInputValidate(t *testing.T) {
	t.Parallel()

	ok := ProductInput{Title: "Widget", Category: "Tools", Stock: 0, Price: decimal.Zero}
	require.NoError(t, ok.Validate())

	blank := ProductInput{Title: "\t", Category: "Tools"}
	require.EqualError(t, blank.Validate(), "title: El nombre del producto es obligatorio.")

	negative := ProductInput{Title: "Widget", Category: "Tools", Stock: -1}
	require.EqualError(t, negative.Validate(), "stock: El inventario no puede ser negativo.")

	huge := ProductInput{Title: "Widget", Category: "Tools", Stock: math.MaxInt32 + 1}
	require.EqualError(t, huge.Validate(), "stock: El inventario supera el máximo permitido.")
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	dir, ok := ParseDirection("subtract")
	require.True(t, ok)
	require.Equal(t, DirectionSubtract, dir)

	dir, ok = ParseDirection("+")
	require.True(t, ok)
	require.Equal(t, DirectionAdd, dir)

	_, ok = ParseDirection("sideways")
	require.False(t, ok)
}

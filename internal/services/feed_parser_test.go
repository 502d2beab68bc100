package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBareArray(t *testing.T) {
	parser := NewFeedParser()

	feed := []byte(`[
		{"display_name": "Blue Dream 3.5g", "vendor": "Acme Gardens", "brand": "Raw Garden", "product_type": "Flower", "strain": "Blue Dream", "quantity": 12},
		{"name": "Gelato 41 Cart", "supplier": "Zenith Farms"}
	]`)

	items, skipped, err := parser.Parse(feed)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, items, 2)

	assert.Equal(t, "Blue Dream 3.5g", items[0].DisplayName)
	assert.Equal(t, "Acme Gardens", items[0].Vendor)
	assert.Equal(t, "Raw Garden", items[0].Brand)
	assert.Equal(t, "Flower", items[0].ProductType)
	assert.Equal(t, "Blue Dream", items[0].Strain)
	assert.Equal(t, 12, items[0].Quantity)

	// Fallback key variants resolve, and quantity defaults to one.
	assert.Equal(t, "Gelato 41 Cart", items[1].DisplayName)
	assert.Equal(t, "Zenith Farms", items[1].Vendor)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestParseWrappedPayloads(t *testing.T) {
	parser := NewFeedParser()

	for _, wrapper := range []string{"items", "products", "listings", "menu"} {
		feed := []byte(`{"` + wrapper + `": [{"title": "Runtz Preroll", "producer": "Acme Gardens"}]}`)
		items, skipped, err := parser.Parse(feed)
		require.NoError(t, err, wrapper)
		assert.Zero(t, skipped)
		require.Len(t, items, 1, wrapper)
		assert.Equal(t, "Runtz Preroll", items[0].DisplayName)
		assert.Equal(t, "Acme Gardens", items[0].Vendor)
	}
}

func TestParseKeyPrecedence(t *testing.T) {
	parser := NewFeedParser()

	// display_name outranks name; camelCase variants count.
	feed := []byte(`[{"display_name": "Primary", "name": "Secondary", "vendorName": "Acme Gardens", "brandName": "Wyld"}]`)
	items, _, err := parser.Parse(feed)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Primary", items[0].DisplayName)
	assert.Equal(t, "Acme Gardens", items[0].Vendor)
	assert.Equal(t, "Wyld", items[0].Brand)
}

func TestParseSkipsNamelessEntries(t *testing.T) {
	parser := NewFeedParser()

	feed := []byte(`[
		{"vendor": "Acme Gardens", "quantity": 3},
		{"display_name": "  ", "vendor": "Acme Gardens"},
		{"display_name": "Blue Dream", "vendor": "Acme Gardens"}
	]`)

	items, skipped, err := parser.Parse(feed)
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Dream", items[0].DisplayName)
}

func TestParseQuantityVariants(t *testing.T) {
	parser := NewFeedParser()

	feed := []byte(`[
		{"display_name": "A", "vendor": "V", "qty": "24"},
		{"display_name": "B", "vendor": "V", "units": 6},
		{"display_name": "C", "vendor": "V", "quantity": "not a number"},
		{"display_name": "D", "vendor": "V", "quantity": -2}
	]`)

	items, _, err := parser.Parse(feed)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, 24, items[0].Quantity)
	assert.Equal(t, 6, items[1].Quantity)
	assert.Equal(t, 1, items[2].Quantity)
	assert.Equal(t, 1, items[3].Quantity)
}

func TestParseTrimsWhitespace(t *testing.T) {
	parser := NewFeedParser()

	feed := []byte(`[{"display_name": "  Blue Dream  ", "vendor": " Acme Gardens "}]`)
	items, _, err := parser.Parse(feed)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Dream", items[0].DisplayName)
	assert.Equal(t, "Acme Gardens", items[0].Vendor)
}

func TestParseMalformedFeeds(t *testing.T) {
	parser := NewFeedParser()

	tests := []struct {
		name string
		feed string
	}{
		{"not JSON", `this is not json`},
		{"scalar", `42`},
		{"object without listing array", `{"meta": {"source": "x"}}`},
		{"items not an array", `{"items": {"display_name": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parser.Parse([]byte(tt.feed))
			assert.Error(t, err)
		})
	}
}

func TestParseEmptyArray(t *testing.T) {
	parser := NewFeedParser()

	items, skipped, err := parser.Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Empty(t, items)
}

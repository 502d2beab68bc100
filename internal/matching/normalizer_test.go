package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "blue dream", "blue dream"},
		{"uppercase", "BLUE DREAM", "blue dream"},
		{"punctuation to spaces", "Blue-Dream #5 (Indica)", "blue dream 5 indica"},
		{"whitespace collapse", "  blue \t dream  ", "blue dream"},
		{"only punctuation", "!!! ---", ""},
		{"digits kept", "Gelato 41 1g", "gelato 41 1g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	inputs := []string{
		"Blue Dream Live Resin Cartridge 1g",
		"DCZ Holdings, LLC.",
		"  Mixed   CASE -- input ",
	}
	for _, input := range inputs {
		once := n.Normalize(input)
		assert.Equal(t, once, n.Normalize(once), "normalizing twice must equal normalizing once")

		nameOnce := n.NormalizeName(input)
		assert.Equal(t, nameOnce, n.NormalizeName(nameOnce))
	}
}

func TestNameTokensStripStopWords(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"packaging words removed",
			"Blue Dream Live Resin Cartridge 1g",
			[]string{"blue", "dream"},
		},
		{
			"identity words kept",
			"Gelato 41 Smalls",
			[]string{"gelato", "41", "smalls"},
		},
		{
			"all stop words",
			"Live Resin Cart",
			[]string{},
		},
		{
			"vendor stop words not applied to order",
			"The Jack of Hearts",
			[]string{"jack", "hearts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.NameTokens(tt.input))
		})
	}
}

func TestNameTokensDropSizeTokens(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	// Combined quantity-unit tokens are one word after punctuation
	// stripping, so the standalone unit stop words miss them.
	assert.Equal(t, []string{"blue", "dream"}, n.NameTokens("Blue Dream Live Resin Cartridge 1g"))
	assert.Equal(t, []string{"sour", "gummies"}, n.NameTokens("Sour Gummies 100mg"))
	assert.Equal(t, []string{"kief"}, n.NameTokens("Kief 2oz"))

	// Bare numbers carry identity and stay.
	assert.Equal(t, []string{"gelato", "41"}, n.NameTokens("Gelato 41"))
}

func TestNormalizeVendorKeepsStopWords(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	// Vendor normalization must not drop stop words: "The Flower Shop"
	// and "Flower Shop" can be different vendors.
	assert.Equal(t, "the flower shop", n.Normalize("The Flower Shop"))
}

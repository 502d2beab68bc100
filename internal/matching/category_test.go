package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketForType(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	tests := []struct {
		input string
		want  CategoryBucket
	}{
		{"Flower", BucketFlower},
		{"FLOWER", BucketFlower},
		{"Bud", BucketFlower},
		{"Smalls", BucketFlower},
		{"Preroll", BucketPreroll},
		{"Pre-Roll", BucketPreroll},
		{"Infused Preroll", BucketPreroll},
		{"Joint", BucketPreroll},
		{"Cartridge", BucketVape},
		{"Live Resin Cartridge", BucketVape},
		{"Disposable", BucketVape},
		{"Vape Pod", BucketVape},
		{"Live Resin", BucketConcentrate},
		{"Rosin", BucketConcentrate},
		{"Wax", BucketConcentrate},
		{"Bubble Hash", BucketConcentrate},
		{"Gummies", BucketEdible},
		{"Chocolate Bar", BucketEdible},
		{"Beverage", BucketEdible},
		{"Tincture", BucketTincture},
		{"Topical Balm", BucketTopical},
		{"Lotion", BucketTopical},
		{"", BucketUnknown},
		{"Sativa", BucketUnknown},
		{"Accessories", BucketUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, n.BucketForType(tt.input))
		})
	}
}

func TestBucketForTypeSpecificFormsWin(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	// A cartridge filled with resin is a vape product, not a concentrate,
	// and an infused joint is still a preroll.
	assert.Equal(t, BucketVape, n.BucketForType("Resin Cartridge"))
	assert.Equal(t, BucketPreroll, n.BucketForType("Hash Infused Joint"))
}

func TestBucketForTypeWholeWordsOnly(t *testing.T) {
	n := NewNormalizer(DefaultStopWords())

	// "flowery" contains "flower" as a substring but not as a word.
	assert.Equal(t, BucketUnknown, n.BucketForType("flowery"))
}

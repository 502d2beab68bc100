package matching

import "strings"

// CategoryBucket is a coarse grouping of product types used only for the
// cross-category mismatch penalty.
type CategoryBucket string

const (
	BucketFlower      CategoryBucket = "flower"
	BucketPreroll     CategoryBucket = "preroll"
	BucketVape        CategoryBucket = "vape"
	BucketConcentrate CategoryBucket = "concentrate"
	BucketEdible      CategoryBucket = "edible"
	BucketTincture    CategoryBucket = "tincture"
	BucketTopical     CategoryBucket = "topical"

	// BucketUnknown is the bucket for unmapped product types. It never
	// triggers the mismatch penalty.
	BucketUnknown CategoryBucket = "unknown"
)

// bucketKeywords maps normalized product-type words to buckets. Checked in
// order so the more specific forms win: a "pre roll" is not flower, an
// "infused preroll" is still a preroll.
var bucketKeywords = []struct {
	keyword string
	bucket  CategoryBucket
}{
	{"preroll", BucketPreroll},
	{"pre roll", BucketPreroll},
	{"joint", BucketPreroll},
	{"blunt", BucketPreroll},
	{"cartridge", BucketVape},
	{"cart", BucketVape},
	{"vape", BucketVape},
	{"disposable", BucketVape},
	{"pod", BucketVape},
	{"concentrate", BucketConcentrate},
	{"dab", BucketConcentrate},
	{"wax", BucketConcentrate},
	{"shatter", BucketConcentrate},
	{"rosin", BucketConcentrate},
	{"resin", BucketConcentrate},
	{"badder", BucketConcentrate},
	{"sugar", BucketConcentrate},
	{"sauce", BucketConcentrate},
	{"hash", BucketConcentrate},
	{"edible", BucketEdible},
	{"gummy", BucketEdible},
	{"gummies", BucketEdible},
	{"chocolate", BucketEdible},
	{"beverage", BucketEdible},
	{"drink", BucketEdible},
	{"capsule", BucketEdible},
	{"tincture", BucketTincture},
	{"topical", BucketTopical},
	{"balm", BucketTopical},
	{"lotion", BucketTopical},
	{"salve", BucketTopical},
	{"flower", BucketFlower},
	{"bud", BucketFlower},
	{"smalls", BucketFlower},
	{"shake", BucketFlower},
}

// BucketForType maps a product-type string to its category bucket. The
// input may be raw or already normalized; it is normalized here so every
// normalized product type maps to exactly one bucket.
func (n *Normalizer) BucketForType(productType string) CategoryBucket {
	norm := n.Normalize(productType)
	if norm == "" {
		return BucketUnknown
	}
	for _, kw := range bucketKeywords {
		if containsWord(norm, kw.keyword) {
			return kw.bucket
		}
	}
	return BucketUnknown
}

// containsWord reports whether phrase contains target as a whole word or
// word sequence.
func containsWord(phrase, target string) bool {
	if phrase == target {
		return true
	}
	return strings.HasPrefix(phrase, target+" ") ||
		strings.HasSuffix(phrase, " "+target) ||
		strings.Contains(phrase, " "+target+" ")
}

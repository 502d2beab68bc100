package matching

// BrandBand maps a minimum brand similarity to the bonus it earns.
type BrandBand struct {
	Min   float64 `json:"min"`
	Bonus float64 `json:"bonus"`
}

// Config holds every tunable used by the matching engine. Nothing in the
// scoring path reads a constant directly; it all comes through here so that
// two catalog snapshots (or two tests) can run with different settings at
// the same time.
type Config struct {
	// Threshold is the minimum score for automatic acceptance in fast mode.
	// A score exactly at the threshold is accepted.
	Threshold float64

	// BrandBands are evaluated highest Min first; the first band at or
	// below the brand similarity wins.
	BrandBands []BrandBand

	// StrongOverlapMin/PartialOverlapMin gate the Jaccard overlap bands.
	// Below PartialOverlapMin the base score scales linearly toward zero.
	StrongOverlapMin   float64
	StrongOverlapBase  float64
	PartialOverlapMin  float64
	PartialOverlapBase float64

	// CategoryPenalty is subtracted when both category buckets are known
	// and differ. StrainBonus is added on a strain match.
	CategoryPenalty float64
	StrainBonus     float64

	// VendorSubstringMin is the minimum length for the substring vendor
	// rule; VendorSemanticThreshold is the minimum semantic similarity for
	// the semantic vendor rule.
	VendorSubstringMin      int
	VendorSemanticThreshold float64

	// StopWords are removed from product names before overlap comparison.
	StopWords []string

	// VendorAliases and StrainAliases are groups of names known to denote
	// the same real-world vendor or strain.
	VendorAliases [][]string
	StrainAliases [][]string

	// MaxAlternatives caps the ranked list returned in detailed mode.
	MaxAlternatives int

	// Workers bounds the batch fan-out. Zero means serial.
	Workers int
}

// DefaultConfig returns the engine defaults. Callers usually override the
// alias tables (loaded from the database) and the threshold.
func DefaultConfig() Config {
	return Config{
		Threshold: 0.4,
		BrandBands: []BrandBand{
			{Min: 0.95, Bonus: 0.15},
			{Min: 0.90, Bonus: 0.12},
			{Min: 0.80, Bonus: 0.10},
			{Min: 0.70, Bonus: 0.05},
		},
		StrongOverlapMin:        0.8,
		StrongOverlapBase:       0.7,
		PartialOverlapMin:       0.5,
		PartialOverlapBase:      0.4,
		CategoryPenalty:         0.5,
		StrainBonus:             0.05,
		VendorSubstringMin:      4,
		VendorSemanticThreshold: 0.8,
		StopWords:               DefaultStopWords(),
		MaxAlternatives:         5,
		Workers:                 4,
	}
}

// DefaultStopWords returns the words stripped from product names before
// word-overlap comparison: conjunctions, units of measure, and generic
// product descriptors that carry no identity.
func DefaultStopWords() []string {
	return []string{
		// conjunctions and filler
		"a", "an", "and", "of", "or", "the", "with",
		// units of measure
		"g", "mg", "oz", "gram", "grams", "ounce", "half", "quarter",
		"eighth", "pack", "ct", "count", "each",
		// generic descriptors
		"live", "resin", "rosin", "cart", "cartridge", "disposable",
		"premium", "infused", "single", "jar",
	}
}

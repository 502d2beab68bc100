package matching

import (
	"context"
	"log"
	"strings"

	"github.com/verdantlabs/menu-match/internal/models"
)

// Reasoning tags attached to candidates for the review UI.
const (
	ReasonVendorExact      = "vendor exact"
	ReasonVendorAlias      = "vendor alias"
	ReasonVendorSubstring  = "vendor substring"
	ReasonVendorSemantic   = "vendor semantic"
	ReasonVendorMismatch   = "vendor mismatch"
	ReasonNearPerfectBrand = "near-perfect brand"
	ReasonStrongBrand      = "strong brand"
	ReasonGoodBrand        = "good brand"
	ReasonFairBrand        = "fair brand"
	ReasonStrongOverlap    = "strong name overlap"
	ReasonPartialOverlap   = "partial name overlap"
	ReasonWeakOverlap      = "weak name overlap"
	ReasonCategoryMismatch = "category mismatch"
	ReasonStrainMatch      = "strain match"
)

// Scorer combines the vendor gate, brand similarity, product-name overlap,
// category penalty, and strain bonus into one confidence score per
// (incoming item, candidate) pair.
type Scorer struct {
	cfg        Config
	normalizer *Normalizer
	resolver   *VendorResolver
	provider   SimilarityProvider

	// strainGroups maps a normalized strain name to its alias group id.
	strainGroups map[string]int
}

// NewScorer builds a scorer. The provider may be nil for lexical-only
// scoring.
func NewScorer(cfg Config, normalizer *Normalizer, resolver *VendorResolver, provider SimilarityProvider) *Scorer {
	strains := make(map[string]int)
	for id, group := range cfg.StrainAliases {
		for _, name := range group {
			strains[normalizer.Normalize(name)] = id
		}
	}
	return &Scorer{
		cfg:          cfg,
		normalizer:   normalizer,
		resolver:     resolver,
		provider:     provider,
		strainGroups: strains,
	}
}

// Score evaluates one candidate against one incoming item. A candidate
// whose vendor does not match comes back with score 0 and the "vendor
// mismatch" tag; the ranker excludes it.
func (s *Scorer) Score(ctx context.Context, item models.IncomingItem, record *models.CatalogRecord) models.MatchCandidate {
	cand := models.MatchCandidate{Record: record}

	vendorOK, vendorConf, vendorReason := s.resolver.Resolve(ctx, item.Vendor, record.Vendor)
	cand.Breakdown.VendorConfidence = vendorConf
	cand.Reasons = append(cand.Reasons, vendorReason)
	if !vendorOK {
		return cand
	}

	brandSim, brandBonus, brandReason := s.brandScore(ctx, item.Brand, record.BrandOrEmpty())
	cand.Breakdown.BrandSimilarity = brandSim
	cand.Breakdown.BrandBonus = brandBonus
	if brandReason != "" {
		cand.Reasons = append(cand.Reasons, brandReason)
	}

	ratio, overlapBase, overlapReason := s.overlapScore(item.DisplayName, record.ProductName)
	cand.Breakdown.OverlapRatio = ratio
	cand.Breakdown.OverlapBase = overlapBase
	cand.Reasons = append(cand.Reasons, overlapReason)

	if s.categoryMismatch(item.ProductType, record.TypeOrEmpty()) {
		cand.Breakdown.CategoryPenalty = s.cfg.CategoryPenalty
		cand.Reasons = append(cand.Reasons, ReasonCategoryMismatch)
	}

	if s.strainMatch(item.Strain, record.StrainOrEmpty()) {
		cand.Breakdown.StrainBonus = s.cfg.StrainBonus
		cand.Reasons = append(cand.Reasons, ReasonStrainMatch)
	}

	cand.Score = clamp(overlapBase+brandBonus+cand.Breakdown.StrainBonus-cand.Breakdown.CategoryPenalty, 0, 1)
	return cand
}

// brandScore computes brand similarity as the max of lexical and, when the
// lexical signal is ambiguous and a provider is available, semantic
// similarity. An empty brand on either side contributes nothing.
func (s *Scorer) brandScore(ctx context.Context, incomingBrand, catalogBrand string) (float64, float64, string) {
	a := s.normalizer.Normalize(incomingBrand)
	b := s.normalizer.Normalize(catalogBrand)
	if a == "" || b == "" {
		return 0, 0, ""
	}

	sim := LexicalSimilarity(a, b)

	// Only pay for an embedding round-trip when the lexical score leaves
	// room for the semantic one to change the band.
	if s.provider != nil && len(s.cfg.BrandBands) > 0 && sim < s.cfg.BrandBands[0].Min {
		semantic, err := s.provider.Similarity(ctx, a, b)
		if err != nil {
			log.Printf("brand similarity provider failed for %q vs %q: %v", a, b, err)
		} else if semantic > sim {
			sim = semantic
		}
	}

	for _, band := range s.cfg.BrandBands {
		if sim >= band.Min {
			return sim, band.Bonus, brandReason(band.Bonus, s.cfg.BrandBands)
		}
	}
	return sim, 0, ""
}

// brandReason names the band a bonus fell into, strongest first.
func brandReason(bonus float64, bands []BrandBand) string {
	names := []string{ReasonNearPerfectBrand, ReasonStrongBrand, ReasonGoodBrand, ReasonFairBrand}
	for i, band := range bands {
		if band.Bonus == bonus && i < len(names) {
			return names[i]
		}
	}
	return ReasonFairBrand
}

// overlapScore computes the Jaccard ratio of the stop-word-filtered word
// sets of both product names and maps it onto the configured bands.
func (s *Scorer) overlapScore(incomingName, catalogName string) (float64, float64, string) {
	ratio := TokenJaccard(s.normalizer.NameTokens(incomingName), s.normalizer.NameTokens(catalogName))
	switch {
	case ratio >= s.cfg.StrongOverlapMin:
		return ratio, s.cfg.StrongOverlapBase, ReasonStrongOverlap
	case ratio >= s.cfg.PartialOverlapMin:
		return ratio, s.cfg.PartialOverlapBase, ReasonPartialOverlap
	default:
		// Linear ramp from zero up to the partial band's floor.
		return ratio, s.cfg.PartialOverlapBase * (ratio / s.cfg.PartialOverlapMin), ReasonWeakOverlap
	}
}

// categoryMismatch reports whether both product types map to known,
// different buckets. An unknown bucket on either side never penalizes.
func (s *Scorer) categoryMismatch(incomingType, catalogType string) bool {
	a := s.normalizer.BucketForType(incomingType)
	b := s.normalizer.BucketForType(catalogType)
	if a == BucketUnknown || b == BucketUnknown {
		return false
	}
	return a != b
}

// strainMatch reports whether both strains are present and equal,
// case-insensitively or through the strain alias table.
func (s *Scorer) strainMatch(incomingStrain, catalogStrain string) bool {
	a := s.normalizer.Normalize(incomingStrain)
	b := s.normalizer.Normalize(catalogStrain)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	groupA, okA := s.strainGroups[a]
	groupB, okB := s.strainGroups[b]
	return okA && okB && groupA == groupB
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HasVendorMismatch reports whether a candidate was discarded by the
// vendor gate.
func HasVendorMismatch(cand models.MatchCandidate) bool {
	for _, r := range cand.Reasons {
		if strings.EqualFold(r, ReasonVendorMismatch) {
			return true
		}
	}
	return false
}

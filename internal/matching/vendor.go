package matching

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"
)

// Vendor equivalence confidences for the first two resolution rules. The
// substring rule scales between vendorSubstringLow and vendorSubstringHigh
// by the length ratio of the shorter to the longer string.
const (
	vendorExactConfidence = 1.0
	vendorAliasConfidence = 0.95
	vendorSubstringLow    = 0.80
	vendorSubstringHigh   = 0.90
)

// VendorResolver decides whether two vendor strings denote the same
// real-world vendor. Rules are evaluated in strict order, stopping at the
// first that fires: exact, alias group, substring containment, semantic
// similarity.
type VendorResolver struct {
	normalizer *Normalizer
	cfg        Config
	provider   SimilarityProvider

	// aliasGroups maps a normalized vendor name to its group id.
	aliasGroups map[string]int
}

// NewVendorResolver builds a resolver over the config's alias table. The
// provider may be nil, which disables the semantic rule.
func NewVendorResolver(cfg Config, normalizer *Normalizer, provider SimilarityProvider) *VendorResolver {
	groups := make(map[string]int)
	for id, group := range cfg.VendorAliases {
		for _, name := range group {
			groups[normalizer.Normalize(name)] = id
		}
	}
	return &VendorResolver{
		normalizer:  normalizer,
		cfg:         cfg,
		provider:    provider,
		aliasGroups: groups,
	}
}

// AliasGroup returns the alias group id for a normalized vendor name, if
// the vendor belongs to one.
func (r *VendorResolver) AliasGroup(normalizedVendor string) (int, bool) {
	id, ok := r.aliasGroups[normalizedVendor]
	return id, ok
}

// Resolve reports whether two raw vendor strings match and with what
// confidence. A non-match is a hard gate for the scorer: the candidate is
// discarded, never merely penalized.
func (r *VendorResolver) Resolve(ctx context.Context, incomingVendor, catalogVendor string) (bool, float64, string) {
	a := r.normalizer.Normalize(incomingVendor)
	b := r.normalizer.Normalize(catalogVendor)
	if a == "" || b == "" {
		return false, 0, ReasonVendorMismatch
	}

	if a == b {
		return true, vendorExactConfidence, ReasonVendorExact
	}

	groupA, okA := r.aliasGroups[a]
	groupB, okB := r.aliasGroups[b]
	if okA && okB && groupA == groupB {
		return true, vendorAliasConfidence, ReasonVendorAlias
	}

	if conf, ok := r.substringConfidence(a, b); ok {
		return true, conf, ReasonVendorSubstring
	}

	if r.provider != nil {
		sim, err := r.provider.Similarity(ctx, a, b)
		if err != nil {
			// Degrade to lexical-only; never propagate provider failures.
			log.Printf("vendor similarity provider failed for %q vs %q: %v", a, b, err)
		} else if sim >= r.cfg.VendorSemanticThreshold {
			return true, sim, ReasonVendorSemantic
		}
	}

	return false, 0, ReasonVendorMismatch
}

// substringConfidence fires when one normalized vendor contains the other
// and both are non-trivially long. Confidence scales with how much of the
// longer string the shorter one covers. Lengths are in runes so multi-byte
// vendor names aren't inflated.
func (r *VendorResolver) substringConfidence(a, b string) (float64, bool) {
	lenA := utf8.RuneCountInString(a)
	lenB := utf8.RuneCountInString(b)
	if lenA < r.cfg.VendorSubstringMin || lenB < r.cfg.VendorSubstringMin {
		return 0, false
	}
	shorter, longer := a, b
	shortLen, longLen := lenA, lenB
	if shortLen > longLen {
		shorter, longer = longer, shorter
		shortLen, longLen = longLen, shortLen
	}
	if !strings.Contains(longer, shorter) {
		return 0, false
	}
	ratio := float64(shortLen) / float64(longLen)
	return vendorSubstringLow + (vendorSubstringHigh-vendorSubstringLow)*ratio, true
}

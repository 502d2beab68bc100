package matching

import (
	"sort"

	"github.com/verdantlabs/menu-match/internal/models"
)

// Rank sorts scored candidates for selection. Vendor-gated candidates are
// dropped first; the rest sort by score descending, ties broken by vendor
// confidence, then brand similarity, then record ID ascending so the order
// is stable across runs.
func Rank(candidates []models.MatchCandidate) []models.MatchCandidate {
	ranked := make([]models.MatchCandidate, 0, len(candidates))
	for _, cand := range candidates {
		if HasVendorMismatch(cand) {
			continue
		}
		ranked = append(ranked, cand)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Breakdown.VendorConfidence != b.Breakdown.VendorConfidence {
			return a.Breakdown.VendorConfidence > b.Breakdown.VendorConfidence
		}
		if a.Breakdown.BrandSimilarity != b.Breakdown.BrandSimilarity {
			return a.Breakdown.BrandSimilarity > b.Breakdown.BrandSimilarity
		}
		return a.Record.ID < b.Record.ID
	})

	return ranked
}

// Select turns a ranked candidate list into a MatchResult for the given
// mode. Fast mode accepts the top candidate at or above the threshold and
// otherwise flags the item for review; detailed mode always returns the
// top alternatives with full reasoning.
func Select(item models.IncomingItem, ranked []models.MatchCandidate, mode models.MatchMode, cfg Config) models.MatchResult {
	result := models.MatchResult{Item: item}

	if len(ranked) == 0 {
		result.Status = models.MatchStatusNoCandidate
		return result
	}

	best := ranked[0]

	if mode == models.ModeDetailed {
		result.Status = models.MatchStatusNeedsReview
		result.Best = &best
		limit := cfg.MaxAlternatives
		if limit <= 0 || limit > len(ranked) {
			limit = len(ranked)
		}
		result.Alternatives = append(result.Alternatives, ranked[:limit]...)
		return result
	}

	// Fast mode carries a record reference only when it was accepted;
	// anything below threshold surfaces as unmatched, never guessed.
	if best.Score >= cfg.Threshold {
		result.Status = models.MatchStatusAutoAccepted
		result.Best = &best
	} else {
		result.Status = models.MatchStatusNeedsReview
	}
	return result
}

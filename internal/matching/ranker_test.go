package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/menu-match/internal/models"
)

func candWithScore(id int, score float64) models.MatchCandidate {
	return models.MatchCandidate{
		Record: &models.CatalogRecord{ID: id},
		Score:  score,
	}
}

func TestRankOrdersByScore(t *testing.T) {
	ranked := Rank([]models.MatchCandidate{
		candWithScore(1, 0.3),
		candWithScore(2, 0.9),
		candWithScore(3, 0.6),
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].Record.ID)
	assert.Equal(t, 3, ranked[1].Record.ID)
	assert.Equal(t, 1, ranked[2].Record.ID)
}

func TestRankDropsVendorMismatches(t *testing.T) {
	gated := candWithScore(1, 0.0)
	gated.Reasons = []string{ReasonVendorMismatch}

	// A legitimate candidate can also score zero; only the gate tag
	// excludes.
	zero := candWithScore(2, 0.0)
	zero.Reasons = []string{ReasonVendorExact, ReasonWeakOverlap}

	ranked := Rank([]models.MatchCandidate{gated, zero})
	require.Len(t, ranked, 1)
	assert.Equal(t, 2, ranked[0].Record.ID)
}

func TestRankTieBreaks(t *testing.T) {
	a := candWithScore(5, 0.8)
	a.Breakdown.VendorConfidence = 0.95
	b := candWithScore(4, 0.8)
	b.Breakdown.VendorConfidence = 1.0

	// Equal scores: higher vendor confidence first.
	ranked := Rank([]models.MatchCandidate{a, b})
	assert.Equal(t, 4, ranked[0].Record.ID)

	// Then brand similarity.
	c := candWithScore(6, 0.8)
	c.Breakdown.VendorConfidence = 1.0
	c.Breakdown.BrandSimilarity = 0.9
	d := candWithScore(7, 0.8)
	d.Breakdown.VendorConfidence = 1.0
	d.Breakdown.BrandSimilarity = 0.7
	ranked = Rank([]models.MatchCandidate{d, c})
	assert.Equal(t, 6, ranked[0].Record.ID)

	// Fully tied: lowest record ID wins, so ordering is reproducible.
	e := candWithScore(9, 0.8)
	f := candWithScore(8, 0.8)
	ranked = Rank([]models.MatchCandidate{e, f})
	assert.Equal(t, 8, ranked[0].Record.ID)
}

func TestSelectNoCandidates(t *testing.T) {
	item := models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme"}

	result := Select(item, nil, models.ModeFast, DefaultConfig())
	assert.Equal(t, models.MatchStatusNoCandidate, result.Status)
	assert.Nil(t, result.Best)

	result = Select(item, nil, models.ModeDetailed, DefaultConfig())
	assert.Equal(t, models.MatchStatusNoCandidate, result.Status)
}

func TestSelectFastThresholdBoundary(t *testing.T) {
	cfg := DefaultConfig()
	item := models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme"}

	// A score exactly at the threshold is accepted.
	atThreshold := Select(item, []models.MatchCandidate{candWithScore(1, cfg.Threshold)}, models.ModeFast, cfg)
	assert.Equal(t, models.MatchStatusAutoAccepted, atThreshold.Status)
	require.NotNil(t, atThreshold.Best)
	assert.Equal(t, 1, atThreshold.Best.Record.ID)
	assert.Empty(t, atThreshold.Alternatives)

	// Just below it is not, and no record reference leaks out.
	below := Select(item, []models.MatchCandidate{candWithScore(1, cfg.Threshold-0.001)}, models.ModeFast, cfg)
	assert.Equal(t, models.MatchStatusNeedsReview, below.Status)
	assert.Nil(t, below.Best)
}

func TestSelectDetailed(t *testing.T) {
	cfg := DefaultConfig()
	item := models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme"}

	ranked := []models.MatchCandidate{
		candWithScore(1, 0.9),
		candWithScore(2, 0.8),
		candWithScore(3, 0.7),
		candWithScore(4, 0.6),
		candWithScore(5, 0.5),
		candWithScore(6, 0.4),
		candWithScore(7, 0.3),
	}

	result := Select(item, ranked, models.ModeDetailed, cfg)

	// Detailed mode always defers to a human, even for a top score that
	// fast mode would have accepted.
	assert.Equal(t, models.MatchStatusNeedsReview, result.Status)
	require.NotNil(t, result.Best)
	assert.Equal(t, 1, result.Best.Record.ID)

	// Alternatives is the full ranked list, best candidate included at
	// the head.
	require.Len(t, result.Alternatives, cfg.MaxAlternatives)
	assert.Equal(t, result.Best.Record.ID, result.Alternatives[0].Record.ID)
	for i := 1; i < len(result.Alternatives); i++ {
		assert.GreaterOrEqual(t, result.Alternatives[i-1].Score, result.Alternatives[i].Score)
	}
}

func TestSelectDetailedFewerThanMax(t *testing.T) {
	cfg := DefaultConfig()
	item := models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme"}

	result := Select(item, []models.MatchCandidate{candWithScore(1, 0.9), candWithScore(2, 0.2)}, models.ModeDetailed, cfg)
	assert.Len(t, result.Alternatives, 2)
}

package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/menu-match/internal/models"
)

func newTestMatcher(t *testing.T, cfg Config) (*Matcher, *Index) {
	t.Helper()
	normalizer := NewNormalizer(cfg.StopWords)
	resolver := NewVendorResolver(cfg, normalizer, nil)
	scorer := NewScorer(cfg, normalizer, resolver, nil)

	records := []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Acme Gardens", normalizer),
		testRecord(2, "Gelato 41 3.5g", "Acme Gardens", normalizer),
		testRecord(3, "Runtz Preroll", "Zenith Farms", normalizer),
	}
	return NewMatcher(cfg, scorer), BuildIndex(records, normalizer, resolver)
}

func TestMatchBatchResultsInInputOrder(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())

	items := []models.IncomingItem{
		{DisplayName: "Blue Dream 3.5g", Vendor: "Acme Gardens"},
		{DisplayName: "Runtz Preroll", Vendor: "Zenith Farms"},
		{DisplayName: "Gelato 41 3.5g", Vendor: "Acme Gardens"},
	}

	results := matcher.MatchBatch(context.Background(), items, index, models.ModeFast)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, items[i], result.Item)
		assert.Equal(t, models.MatchStatusAutoAccepted, result.Status)
		require.NotNil(t, result.Best)
	}
	assert.Equal(t, 1, results[0].Best.Record.ID)
	assert.Equal(t, 3, results[1].Best.Record.ID)
	assert.Equal(t, 2, results[2].Best.Record.ID)
}

func TestMatchBatchDeterministicAcrossWorkerCounts(t *testing.T) {
	items := []models.IncomingItem{
		{DisplayName: "Blue Dream 3.5g", Vendor: "Acme Gardens"},
		{DisplayName: "Gelato 41", Vendor: "Acme Gardens"},
		{DisplayName: "Runtz Preroll", Vendor: "Zenith Farms"},
		{DisplayName: "Unknown Thing", Vendor: "Nobody"},
		{DisplayName: "No Vendor Item", Vendor: ""},
	}

	serial := DefaultConfig()
	serial.Workers = 1
	serialMatcher, index := newTestMatcher(t, serial)
	want := serialMatcher.MatchBatch(context.Background(), items, index, models.ModeDetailed)

	parallel := DefaultConfig()
	parallel.Workers = 4
	parallelMatcher, index := newTestMatcher(t, parallel)

	for run := 0; run < 5; run++ {
		got := parallelMatcher.MatchBatch(context.Background(), items, index, models.ModeDetailed)
		assert.Equal(t, want, got)
	}
}

func TestMatchBatchInvalidInput(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())

	results := matcher.MatchBatch(context.Background(), []models.IncomingItem{
		{DisplayName: "Blue Dream 3.5g", Vendor: "   "},
		{DisplayName: "Blue Dream 3.5g", Vendor: "Acme Gardens"},
	}, index, models.ModeFast)

	require.Len(t, results, 2)
	assert.Equal(t, models.MatchStatusInvalidInput, results[0].Status)
	assert.NotEmpty(t, results[0].Error)
	assert.Nil(t, results[0].Best)

	// One bad item never poisons its neighbors.
	assert.Equal(t, models.MatchStatusAutoAccepted, results[1].Status)
}

func TestMatchBatchNoCandidate(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())

	results := matcher.MatchBatch(context.Background(), []models.IncomingItem{
		{DisplayName: "Blue Dream 3.5g", Vendor: "Unlisted Vendor"},
	}, index, models.ModeFast)

	require.Len(t, results, 1)
	assert.Equal(t, models.MatchStatusNoCandidate, results[0].Status)
	assert.Nil(t, results[0].Best)
}

func TestMatchBatchEmptyIndex(t *testing.T) {
	cfg := DefaultConfig()
	normalizer := NewNormalizer(cfg.StopWords)
	resolver := NewVendorResolver(cfg, normalizer, nil)
	scorer := NewScorer(cfg, normalizer, resolver, nil)
	matcher := NewMatcher(cfg, scorer)

	empty := BuildIndex(nil, normalizer, resolver)
	items := []models.IncomingItem{{DisplayName: "Blue Dream", Vendor: "Acme Gardens"}}

	for _, index := range []*Index{empty, nil} {
		results := matcher.MatchBatch(context.Background(), items, index, models.ModeFast)
		require.Len(t, results, 1)
		assert.Equal(t, models.MatchStatusNoCandidate, results[0].Status)
	}
}

func TestMatchBatchEmptyBatch(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())

	assert.Empty(t, matcher.MatchBatch(context.Background(), nil, index, models.ModeFast))
}

func TestMatchBatchCancelledContext(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := matcher.MatchBatch(ctx, []models.IncomingItem{
		{DisplayName: "Blue Dream 3.5g", Vendor: "Acme Gardens"},
		{DisplayName: "Gelato 41 3.5g", Vendor: "Acme Gardens"},
	}, index, models.ModeFast)

	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, models.MatchStatusCancelled, result.Status)
		assert.Contains(t, result.Error, context.Canceled.Error())
		assert.Nil(t, result.Best)
	}
}

func TestMatchBatchModes(t *testing.T) {
	matcher, index := newTestMatcher(t, DefaultConfig())
	items := []models.IncomingItem{{DisplayName: "Blue Dream 3.5g", Vendor: "Acme Gardens"}}

	fast := matcher.MatchBatch(context.Background(), items, index, models.ModeFast)
	require.Len(t, fast, 1)
	assert.Equal(t, models.MatchStatusAutoAccepted, fast[0].Status)
	assert.Empty(t, fast[0].Alternatives)

	detailed := matcher.MatchBatch(context.Background(), items, index, models.ModeDetailed)
	require.Len(t, detailed, 1)
	assert.Equal(t, models.MatchStatusNeedsReview, detailed[0].Status)
	require.NotNil(t, detailed[0].Best)
	assert.NotEmpty(t, detailed[0].Alternatives)
	assert.NotEmpty(t, detailed[0].Best.Reasons)
}

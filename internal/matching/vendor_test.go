package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a fixed similarity for every pair.
type stubProvider struct {
	sim   float64
	err   error
	calls int
}

func (p *stubProvider) Similarity(ctx context.Context, a, b string) (float64, error) {
	p.calls++
	return p.sim, p.err
}

func newTestResolver(t *testing.T, provider SimilarityProvider) *VendorResolver {
	t.Helper()
	cfg := DefaultConfig()
	cfg.VendorAliases = [][]string{
		{"Dank Czar", "DCZ Holdings", "DC Flower Co"},
		{"Wyld", "Wyld CBD"},
	}
	return NewVendorResolver(cfg, NewNormalizer(cfg.StopWords), provider)
}

func TestResolveExact(t *testing.T) {
	r := newTestResolver(t, nil)

	ok, conf, reason := r.Resolve(context.Background(), "Top-Shelf!", "top shelf")
	assert.True(t, ok)
	assert.Equal(t, 1.0, conf)
	assert.Equal(t, ReasonVendorExact, reason)
}

func TestResolveAlias(t *testing.T) {
	r := newTestResolver(t, nil)

	ok, conf, reason := r.Resolve(context.Background(), "Dank Czar", "DCZ Holdings")
	assert.True(t, ok)
	assert.Equal(t, 0.95, conf)
	assert.Equal(t, ReasonVendorAlias, reason)
}

func TestResolveAliasBeforeSubstring(t *testing.T) {
	cfg := DefaultConfig()
	cfg.VendorAliases = [][]string{{"Dank Czar", "Dank Czar Holdings"}}
	r := NewVendorResolver(cfg, NewNormalizer(cfg.StopWords), nil)

	// The pair also satisfies the substring rule, but alias fires first
	// and pins the confidence at 0.95.
	ok, conf, reason := r.Resolve(context.Background(), "Dank Czar", "Dank Czar Holdings")
	assert.True(t, ok)
	assert.Equal(t, 0.95, conf)
	assert.Equal(t, ReasonVendorAlias, reason)
}

func TestResolveSubstring(t *testing.T) {
	r := newTestResolver(t, nil)

	ok, conf, reason := r.Resolve(context.Background(), "Top Shelf", "Top Shelf Distro")
	require.True(t, ok)
	assert.Equal(t, ReasonVendorSubstring, reason)

	// Confidence scales with coverage of the longer name.
	ratio := float64(len("top shelf")) / float64(len("top shelf distro"))
	assert.InDelta(t, 0.80+0.10*ratio, conf, 1e-9)
	assert.GreaterOrEqual(t, conf, 0.80)
	assert.LessOrEqual(t, conf, 0.90)
}

func TestResolveSubstringMinLength(t *testing.T) {
	r := newTestResolver(t, nil)

	// "co" is contained in plenty of vendor names; too short to trust.
	ok, _, reason := r.Resolve(context.Background(), "Co", "Cosmic Gardens")
	assert.False(t, ok)
	assert.Equal(t, ReasonVendorMismatch, reason)
}

func TestResolveSubstringCountsRunes(t *testing.T) {
	r := newTestResolver(t, nil)

	// Three runes across six bytes: still below the minimum length.
	ok, _, reason := r.Resolve(context.Background(), "öäü", "öäü gardens")
	assert.False(t, ok)
	assert.Equal(t, ReasonVendorMismatch, reason)

	// Ratio is rune-based too.
	ok, conf, reason := r.Resolve(context.Background(), "café", "café collective")
	require.True(t, ok)
	assert.Equal(t, ReasonVendorSubstring, reason)
	assert.InDelta(t, 0.80+0.10*(4.0/15.0), conf, 1e-9)
}

func TestResolveSemantic(t *testing.T) {
	provider := &stubProvider{sim: 0.88}
	r := newTestResolver(t, provider)

	ok, conf, reason := r.Resolve(context.Background(), "Emerald Farms", "EF Cultivation")
	assert.True(t, ok)
	assert.Equal(t, 0.88, conf)
	assert.Equal(t, ReasonVendorSemantic, reason)
	assert.Equal(t, 1, provider.calls)
}

func TestResolveSemanticBelowThreshold(t *testing.T) {
	provider := &stubProvider{sim: 0.5}
	r := newTestResolver(t, provider)

	ok, conf, reason := r.Resolve(context.Background(), "Emerald Farms", "Sunset Growers")
	assert.False(t, ok)
	assert.Equal(t, 0.0, conf)
	assert.Equal(t, ReasonVendorMismatch, reason)
}

func TestResolveProviderFailureDegrades(t *testing.T) {
	provider := &stubProvider{err: errors.New("embeddings unavailable")}
	r := newTestResolver(t, provider)

	// A failing provider must never fail the resolution, only fall back
	// to the lexical verdict.
	ok, _, reason := r.Resolve(context.Background(), "Emerald Farms", "EF Cultivation")
	assert.False(t, ok)
	assert.Equal(t, ReasonVendorMismatch, reason)
}

func TestResolveMismatchWithoutProvider(t *testing.T) {
	r := newTestResolver(t, nil)

	ok, conf, reason := r.Resolve(context.Background(), "Acme Gardens", "Zenith Farms")
	assert.False(t, ok)
	assert.Equal(t, 0.0, conf)
	assert.Equal(t, ReasonVendorMismatch, reason)
}

func TestResolveEmptyVendor(t *testing.T) {
	r := newTestResolver(t, nil)

	ok, _, reason := r.Resolve(context.Background(), "", "Acme Gardens")
	assert.False(t, ok)
	assert.Equal(t, ReasonVendorMismatch, reason)
}

func TestAliasGroup(t *testing.T) {
	r := newTestResolver(t, nil)

	groupA, okA := r.AliasGroup("dank czar")
	groupB, okB := r.AliasGroup("dcz holdings")
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, groupA, groupB)

	_, ok := r.AliasGroup("unrelated vendor")
	assert.False(t, ok)

	groupC, okC := r.AliasGroup("wyld")
	require.True(t, okC)
	assert.NotEqual(t, groupA, groupC)
}

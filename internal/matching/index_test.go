package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/menu-match/internal/models"
)

func testRecord(id int, name, vendor string, normalizer *Normalizer) *models.CatalogRecord {
	return &models.CatalogRecord{
		ID:               id,
		ProductName:      name,
		NormalizedName:   normalizer.NormalizeName(name),
		Vendor:           vendor,
		NormalizedVendor: normalizer.Normalize(vendor),
		CategoryBucket:   string(BucketUnknown),
	}
}

func buildTestIndex(t *testing.T, aliases [][]string, records []*models.CatalogRecord) *Index {
	t.Helper()
	cfg := DefaultConfig()
	cfg.VendorAliases = aliases
	normalizer := NewNormalizer(cfg.StopWords)
	resolver := NewVendorResolver(cfg, normalizer, nil)
	return BuildIndex(records, normalizer, resolver)
}

func TestIndexLookupByVendor(t *testing.T) {
	normalizer := NewNormalizer(DefaultStopWords())
	records := []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Acme Gardens", normalizer),
		testRecord(2, "Gelato 41 3.5g", "Acme Gardens", normalizer),
		testRecord(3, "Blue Dream 3.5g", "Zenith Farms", normalizer),
	}
	idx := buildTestIndex(t, nil, records)

	assert.Equal(t, 3, idx.Size())
	assert.Equal(t, 2, idx.Vendors())

	got := idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme Gardens"})
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[1].ID)
}

func TestIndexLookupNormalizesVendor(t *testing.T) {
	normalizer := NewNormalizer(DefaultStopWords())
	records := []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Acme Gardens", normalizer),
	}
	idx := buildTestIndex(t, nil, records)

	got := idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: "ACME-Gardens!"})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
}

func TestIndexLookupExpandsAliasGroup(t *testing.T) {
	normalizer := NewNormalizer(DefaultStopWords())
	records := []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Dank Czar", normalizer),
		testRecord(2, "Gelato 41 3.5g", "DCZ Holdings", normalizer),
		testRecord(3, "Runtz 3.5g", "Zenith Farms", normalizer),
	}
	idx := buildTestIndex(t, [][]string{{"Dank Czar", "DCZ Holdings"}}, records)

	// A lookup under one alias returns records filed under every name in
	// the group, direct hits first, no duplicates.
	got := idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: "DCZ Holdings"})
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 1, got[1].ID)
}

func TestIndexLookupUnknownVendor(t *testing.T) {
	normalizer := NewNormalizer(DefaultStopWords())
	idx := buildTestIndex(t, nil, []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Acme Gardens", normalizer),
	})

	assert.Empty(t, idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Nobody"}))
	assert.Empty(t, idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: ""}))
}

func TestIndexSkipsVendorlessRecords(t *testing.T) {
	normalizer := NewNormalizer(DefaultStopWords())
	records := []*models.CatalogRecord{
		testRecord(1, "Blue Dream 3.5g", "Acme Gardens", normalizer),
		testRecord(2, "Orphan Product", "", normalizer),
	}
	idx := buildTestIndex(t, nil, records)

	assert.Equal(t, 1, idx.Vendors())
	got := idx.Lookup(models.IncomingItem{DisplayName: "Blue Dream", Vendor: "Acme Gardens"})
	require.Len(t, got, 1)
}

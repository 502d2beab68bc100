package matching

import (
	"github.com/verdantlabs/menu-match/internal/models"
)

// Index holds lookup structures over one immutable catalog snapshot.
// Records are grouped by normalized vendor, with an alias-expanded
// secondary map so a lookup for one member of an alias group also returns
// records stored under the others. Safe for concurrent readers; a catalog
// reload builds a fresh Index and swaps it in.
type Index struct {
	byVendor map[string][]*models.CatalogRecord
	byGroup  map[int][]*models.CatalogRecord

	normalizer *Normalizer
	resolver   *VendorResolver
	size       int
}

// BuildIndex groups a catalog snapshot for sub-linear candidate retrieval.
// Single-threaded preprocessing; the result is read-only.
func BuildIndex(records []*models.CatalogRecord, normalizer *Normalizer, resolver *VendorResolver) *Index {
	idx := &Index{
		byVendor:   make(map[string][]*models.CatalogRecord),
		byGroup:    make(map[int][]*models.CatalogRecord),
		normalizer: normalizer,
		resolver:   resolver,
		size:       len(records),
	}
	for _, rec := range records {
		vendor := rec.NormalizedVendor
		if vendor == "" {
			vendor = normalizer.Normalize(rec.Vendor)
		}
		if vendor == "" {
			continue
		}
		idx.byVendor[vendor] = append(idx.byVendor[vendor], rec)
		if group, ok := resolver.AliasGroup(vendor); ok {
			idx.byGroup[group] = append(idx.byGroup[group], rec)
		}
	}
	return idx
}

// Size returns the number of indexed records.
func (idx *Index) Size() int {
	return idx.size
}

// Vendors returns the number of distinct normalized vendors.
func (idx *Index) Vendors() int {
	return len(idx.byVendor)
}

// Lookup returns the candidate records for an incoming item: the item's
// vendor group plus, when the vendor belongs to an alias group, every
// record filed under the group's other names. Category, brand, and name
// filtering is the scorer's job; vendor aliasing means narrowing here
// would drop legitimate candidates.
func (idx *Index) Lookup(item models.IncomingItem) []*models.CatalogRecord {
	vendor := idx.normalizer.Normalize(item.Vendor)
	if vendor == "" {
		return nil
	}

	direct := idx.byVendor[vendor]
	group, inGroup := idx.resolver.AliasGroup(vendor)
	if !inGroup {
		return direct
	}

	expanded := idx.byGroup[group]
	if len(expanded) == 0 {
		return direct
	}

	// Merge, keeping direct hits first and dropping duplicates: records
	// whose own vendor is in the group appear in both maps.
	seen := make(map[int]struct{}, len(direct)+len(expanded))
	merged := make([]*models.CatalogRecord, 0, len(direct)+len(expanded))
	for _, rec := range direct {
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	for _, rec := range expanded {
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	return merged
}

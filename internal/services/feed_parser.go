package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/verdantlabs/menu-match/internal/models"
)

// FeedParser turns a vendor's JSON feed into canonical IncomingItems.
// Feeds arrive with inconsistent key names across vendors, so each field
// is resolved from a ranked list of variants here, at the ingestion
// boundary; the matching engine only ever sees one well-typed shape.
type FeedParser struct {
	nameKeys   []string
	vendorKeys []string
	brandKeys  []string
	typeKeys   []string
	strainKeys []string
	qtyKeys    []string
}

// NewFeedParser creates a feed parser with the known key variants.
func NewFeedParser() *FeedParser {
	return &FeedParser{
		nameKeys:   []string{"display_name", "displayName", "product_name", "productName", "name", "title"},
		vendorKeys: []string{"vendor", "vendor_name", "vendorName", "supplier", "producer"},
		brandKeys:  []string{"brand", "brand_name", "brandName"},
		typeKeys:   []string{"product_type", "productType", "type", "category"},
		strainKeys: []string{"strain", "strain_name", "strainName"},
		qtyKeys:    []string{"quantity", "qty", "units"},
	}
}

// Parse decodes a feed document. The payload may be a bare JSON array of
// listings or an object with an "items"/"products"/"listings" array.
// Entries that yield no display name are skipped, not fatal; the skip
// count lets the caller report how lossy the feed was.
func (p *FeedParser) Parse(data []byte) ([]models.IncomingItem, int, error) {
	entries, err := feedEntries(data)
	if err != nil {
		return nil, 0, err
	}

	items := make([]models.IncomingItem, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		item, ok := p.parseEntry(entry)
		if !ok {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// parseEntry maps one raw feed entry onto the canonical item shape.
func (p *FeedParser) parseEntry(entry map[string]any) (models.IncomingItem, bool) {
	name := firstString(entry, p.nameKeys)
	if name == "" {
		return models.IncomingItem{}, false
	}

	item := models.IncomingItem{
		DisplayName: name,
		Vendor:      firstString(entry, p.vendorKeys),
		Brand:       firstString(entry, p.brandKeys),
		ProductType: firstString(entry, p.typeKeys),
		Strain:      firstString(entry, p.strainKeys),
		Quantity:    firstInt(entry, p.qtyKeys, 1),
	}
	return item, true
}

// feedEntries extracts the listing array from either payload shape.
func feedEntries(data []byte) ([]map[string]any, error) {
	var direct []map[string]any
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("feed is neither a JSON array nor an object: %w", err)
	}
	for _, key := range []string{"items", "products", "listings", "menu"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var entries []map[string]any
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("feed %q field is not an array of objects: %w", key, err)
		}
		return entries, nil
	}
	return nil, fmt.Errorf("feed object has no items, products, listings, or menu array")
}

// firstString returns the first non-empty string value among the keys.
func firstString(entry map[string]any, keys []string) string {
	for _, key := range keys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// firstInt returns the first usable integer among the keys. Feeds send
// quantities as numbers or numeric strings.
func firstInt(entry map[string]any, keys []string, fallback int) int {
	for _, key := range keys {
		v, ok := entry[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n > 0 {
				return int(n)
			}
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && parsed > 0 {
				return parsed
			}
		}
	}
	return fallback
}

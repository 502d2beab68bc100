package models

import (
	"time"
)

// CatalogRecord is one row of the local product catalog. Normalized fields
// are computed once at the ingestion boundary and are immutable for the
// lifetime of a catalog snapshot. Price, weight, and lineage are
// pass-through metadata: never scored, but copied into a match's resolved
// output.
type CatalogRecord struct {
	ID               int       `json:"id"`
	ProductName      string    `json:"product_name"`
	NormalizedName   string    `json:"normalized_name"`
	Vendor           string    `json:"vendor"`
	NormalizedVendor string    `json:"normalized_vendor"`
	Brand            *string   `json:"brand,omitempty"`
	NormalizedBrand  *string   `json:"normalized_brand,omitempty"`
	ProductType      *string   `json:"product_type,omitempty"`
	NormalizedType   *string   `json:"normalized_type,omitempty"`
	CategoryBucket   string    `json:"category_bucket"`
	Strain           *string   `json:"strain,omitempty"`
	Price            *float64  `json:"price,omitempty"`
	WeightGrams      *float64  `json:"weight_grams,omitempty"`
	Lineage          *string   `json:"lineage,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BrandOrEmpty returns the raw brand, or "" when the record has none.
func (r *CatalogRecord) BrandOrEmpty() string {
	if r.Brand == nil {
		return ""
	}
	return *r.Brand
}

// TypeOrEmpty returns the raw product type, or "" when the record has none.
func (r *CatalogRecord) TypeOrEmpty() string {
	if r.ProductType == nil {
		return ""
	}
	return *r.ProductType
}

// StrainOrEmpty returns the strain, or "" when the record has none.
func (r *CatalogRecord) StrainOrEmpty() string {
	if r.Strain == nil {
		return ""
	}
	return *r.Strain
}

// CreateRecordRequest is the request body for creating a catalog record
type CreateRecordRequest struct {
	ProductName string   `json:"product_name"`
	Vendor      string   `json:"vendor"`
	Brand       *string  `json:"brand,omitempty"`
	ProductType *string  `json:"product_type,omitempty"`
	Strain      *string  `json:"strain,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	WeightGrams *float64 `json:"weight_grams,omitempty"`
	Lineage     *string  `json:"lineage,omitempty"`
}

// UpdateRecordRequest is the request body for updating a catalog record
type UpdateRecordRequest struct {
	ProductName *string  `json:"product_name,omitempty"`
	Vendor      *string  `json:"vendor,omitempty"`
	Brand       *string  `json:"brand,omitempty"`
	ProductType *string  `json:"product_type,omitempty"`
	Strain      *string  `json:"strain,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	WeightGrams *float64 `json:"weight_grams,omitempty"`
	Lineage     *string  `json:"lineage,omitempty"`
}

// RecordListParams contains parameters for listing catalog records
type RecordListParams struct {
	Limit  int
	Offset int
	Search string
	Vendor string
}

// CatalogStats contains aggregate statistics for the catalog
type CatalogStats struct {
	TotalRecords int `json:"total_records"`
	TotalVendors int `json:"total_vendors"`
	TotalBrands  int `json:"total_brands"`
	WithStrain   int `json:"with_strain"`
}

// VendorAliasGroup is a set of vendor names known to denote one real
// vendor.
type VendorAliasGroup struct {
	GroupID int      `json:"group_id"`
	Names   []string `json:"names"`
}

// CreateAliasGroupRequest is the request body for creating an alias group
type CreateAliasGroupRequest struct {
	Names []string `json:"names"`
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/verdantlabs/menu-match/internal/config"
	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/matching"
	"github.com/verdantlabs/menu-match/internal/models"
)

// seedRecord is one entry of the seed file. Only product_name and vendor
// are required; everything else is optional metadata.
type seedRecord struct {
	ProductName string   `json:"product_name"`
	Vendor      string   `json:"vendor"`
	Brand       *string  `json:"brand,omitempty"`
	ProductType *string  `json:"product_type,omitempty"`
	Strain      *string  `json:"strain,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	WeightGrams *float64 `json:"weight_grams,omitempty"`
	Lineage     *string  `json:"lineage,omitempty"`
}

func main() {
	// Command line flags
	seedFile := flag.String("file", "catalog.json", "Path to catalog seed file (JSON array)")
	dryRun := flag.Bool("dry-run", false, "Preview changes without writing to database")
	vendorFilter := flag.String("vendor", "", "Only import records from this vendor")
	flag.Parse()

	// Load .env
	godotenv.Load()

	// Load config
	cfg := config.Load()

	records, err := loadSeedFile(*seedFile, *vendorFilter)
	if err != nil {
		log.Fatalf("Failed to load seed file: %v", err)
	}

	log.Printf("Found %d catalog records to import", len(records))

	if *dryRun {
		log.Println("DRY RUN - No changes will be made")
		printPreview(records, 20)
		return
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations so the seeder works against a fresh database
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	imported, skipped, err := importRecords(db, cfg, records)
	if err != nil {
		log.Fatalf("Failed to import records: %v", err)
	}

	log.Printf("Import complete: %d new records, %d already present", imported, skipped)
}

// loadSeedFile reads and filters the seed file
func loadSeedFile(path, vendorFilter string) ([]seedRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var raw []seedRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	var records []seedRecord
	for i, rec := range raw {
		if strings.TrimSpace(rec.ProductName) == "" || strings.TrimSpace(rec.Vendor) == "" {
			log.Printf("Warning: skipping entry %d, missing product_name or vendor", i)
			continue
		}
		if vendorFilter != "" && !strings.EqualFold(strings.TrimSpace(rec.Vendor), vendorFilter) {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// importRecords inserts seed records, normalizing each one the way the
// ingestion API does. Records whose normalized name and vendor already
// exist are skipped.
func importRecords(db *database.DB, cfg *config.Config, records []seedRecord) (imported, skipped int, err error) {
	ctx := context.Background()
	normalizer := matching.NewNormalizer(cfg.MatchingConfig().StopWords)

	for _, rec := range records {
		catalog := buildRecord(normalizer, rec)

		var existingID int
		err := db.Pool.QueryRow(ctx, `
			SELECT id FROM catalog_records
			WHERE normalized_name = $1 AND normalized_vendor = $2
		`, catalog.NormalizedName, catalog.NormalizedVendor).Scan(&existingID)

		if err == nil {
			skipped++
			continue
		}

		if _, err := db.CreateRecord(ctx, catalog); err != nil {
			return imported, skipped, fmt.Errorf("failed to insert %q: %w", rec.ProductName, err)
		}
		imported++

		if imported%500 == 0 {
			log.Printf("Progress: %d records imported", imported)
		}
	}

	return imported, skipped, nil
}

// buildRecord computes the normalized fields for one seed entry
func buildRecord(normalizer *matching.Normalizer, rec seedRecord) *models.CatalogRecord {
	catalog := &models.CatalogRecord{
		ProductName:      rec.ProductName,
		NormalizedName:   normalizer.NormalizeName(rec.ProductName),
		Vendor:           rec.Vendor,
		NormalizedVendor: normalizer.Normalize(rec.Vendor),
		Brand:            rec.Brand,
		ProductType:      rec.ProductType,
		CategoryBucket:   string(matching.BucketUnknown),
		Strain:           rec.Strain,
		Price:            rec.Price,
		WeightGrams:      rec.WeightGrams,
		Lineage:          rec.Lineage,
	}
	if rec.Brand != nil {
		normalized := normalizer.Normalize(*rec.Brand)
		catalog.NormalizedBrand = &normalized
	}
	if rec.ProductType != nil {
		normalized := normalizer.Normalize(*rec.ProductType)
		catalog.NormalizedType = &normalized
		catalog.CategoryBucket = string(normalizer.BucketForType(*rec.ProductType))
	}
	return catalog
}

// printPreview shows a sample of the data to be imported
func printPreview(records []seedRecord, limit int) {
	fmt.Println("\n=== Preview of records to import ===")
	fmt.Printf("Total: %d records\n\n", len(records))

	// Group by vendor for summary
	vendorCount := make(map[string]int)
	for _, rec := range records {
		vendorCount[rec.Vendor]++
	}

	fmt.Println("Records per vendor:")
	for vendor, count := range vendorCount {
		fmt.Printf("  %s: %d records\n", vendor, count)
	}

	fmt.Printf("\nSample records (first %d):\n", limit)
	for i, rec := range records {
		if i >= limit {
			break
		}
		brand := ""
		if rec.Brand != nil {
			brand = " [" + *rec.Brand + "]"
		}
		fmt.Printf("  %s - %s%s\n", rec.Vendor, rec.ProductName, brand)
	}
}

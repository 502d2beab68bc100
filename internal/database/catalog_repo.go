package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/verdantlabs/menu-match/internal/models"
)

var (
	ErrRecordNotFound = errors.New("catalog record not found")
)

const catalogColumns = `id, product_name, normalized_name, vendor, normalized_vendor,
		brand, normalized_brand, product_type, normalized_type, category_bucket,
		strain, price, weight_grams, lineage, created_at, updated_at`

// LoadCatalog loads the entire catalog for an index build. Records come
// back ordered by id so snapshot construction is deterministic.
func (db *DB) LoadCatalog(ctx context.Context) ([]*models.CatalogRecord, error) {
	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM catalog_records ORDER BY id ASC
	`, catalogColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListRecords returns a paginated list of catalog records with optional filtering
func (db *DB) ListRecords(ctx context.Context, params *models.RecordListParams) ([]*models.CatalogRecord, int, error) {
	var whereClauses []string
	var args []interface{}
	argIndex := 1

	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(LOWER(product_name) LIKE LOWER($%d) OR LOWER(brand) LIKE LOWER($%d))",
			argIndex, argIndex,
		))
		args = append(args, "%"+params.Search+"%")
		argIndex++
	}

	if params.Vendor != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("normalized_vendor = $%d", argIndex))
		args = append(args, params.Vendor)
		argIndex++
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Get total count
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM catalog_records %s", whereClause)
	err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_records
		%s
		ORDER BY product_name ASC
		LIMIT $%d OFFSET $%d
	`, catalogColumns, whereClause, argIndex, argIndex+1)

	args = append(args, params.Limit, params.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*models.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// GetRecordByID retrieves a catalog record by ID
func (db *DB) GetRecordByID(ctx context.Context, id int) (*models.CatalogRecord, error) {
	row := db.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM catalog_records WHERE id = $1
	`, catalogColumns), id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

// CreateRecord inserts a catalog record. Normalized fields and the
// category bucket are computed by the caller so the database stays free of
// matching logic.
func (db *DB) CreateRecord(ctx context.Context, rec *models.CatalogRecord) (*models.CatalogRecord, error) {
	row := db.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO catalog_records (
			product_name, normalized_name, vendor, normalized_vendor,
			brand, normalized_brand, product_type, normalized_type, category_bucket,
			strain, price, weight_grams, lineage, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING %s
	`, catalogColumns),
		rec.ProductName, rec.NormalizedName, rec.Vendor, rec.NormalizedVendor,
		rec.Brand, rec.NormalizedBrand, rec.ProductType, rec.NormalizedType, rec.CategoryBucket,
		rec.Strain, rec.Price, rec.WeightGrams, rec.Lineage,
	)

	return scanRecord(row)
}

// UpdateRecord updates a catalog record with fully recomputed fields.
func (db *DB) UpdateRecord(ctx context.Context, rec *models.CatalogRecord) (*models.CatalogRecord, error) {
	row := db.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE catalog_records
		SET product_name = $2,
		    normalized_name = $3,
		    vendor = $4,
		    normalized_vendor = $5,
		    brand = $6,
		    normalized_brand = $7,
		    product_type = $8,
		    normalized_type = $9,
		    category_bucket = $10,
		    strain = $11,
		    price = $12,
		    weight_grams = $13,
		    lineage = $14,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, catalogColumns),
		rec.ID,
		rec.ProductName, rec.NormalizedName, rec.Vendor, rec.NormalizedVendor,
		rec.Brand, rec.NormalizedBrand, rec.ProductType, rec.NormalizedType, rec.CategoryBucket,
		rec.Strain, rec.Price, rec.WeightGrams, rec.Lineage,
	)

	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return updated, nil
}

// DeleteRecord deletes a catalog record by ID
func (db *DB) DeleteRecord(ctx context.Context, id int) error {
	result, err := db.Pool.Exec(ctx, `DELETE FROM catalog_records WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// GetCatalogStats returns aggregate statistics for the catalog
func (db *DB) GetCatalogStats(ctx context.Context) (*models.CatalogStats, error) {
	stats := &models.CatalogStats{}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) as total_records,
			COUNT(DISTINCT normalized_vendor) as total_vendors,
			COUNT(DISTINCT normalized_brand) FILTER (WHERE normalized_brand IS NOT NULL) as total_brands,
			COUNT(*) FILTER (WHERE strain IS NOT NULL) as with_strain
		FROM catalog_records
	`).Scan(&stats.TotalRecords, &stats.TotalVendors, &stats.TotalBrands, &stats.WithStrain)

	if err != nil {
		return nil, err
	}

	return stats, nil
}

// SearchRecords performs a fuzzy search on catalog records
func (db *DB) SearchRecords(ctx context.Context, query string, limit int) ([]*models.CatalogRecord, error) {
	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM catalog_records
		WHERE product_name ILIKE $1 OR brand ILIKE $1 OR vendor ILIKE $1
		ORDER BY
			CASE WHEN product_name ILIKE $2 || '%%' THEN 0 ELSE 1 END,
			product_name
		LIMIT $3
	`, catalogColumns), "%"+query+"%", query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// scanRecord reads one catalog record from a row or rows cursor.
func scanRecord(row pgx.Row) (*models.CatalogRecord, error) {
	rec := &models.CatalogRecord{}
	err := row.Scan(
		&rec.ID, &rec.ProductName, &rec.NormalizedName, &rec.Vendor, &rec.NormalizedVendor,
		&rec.Brand, &rec.NormalizedBrand, &rec.ProductType, &rec.NormalizedType, &rec.CategoryBucket,
		&rec.Strain, &rec.Price, &rec.WeightGrams, &rec.Lineage, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

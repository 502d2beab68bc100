package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/models"
)

// ListRecords returns catalog records with pagination and optional search
func (h *Handler) ListRecords(c *fiber.Ctx) error {
	params := &models.RecordListParams{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
		Search: c.Query("search"),
		Vendor: h.normalizer.Normalize(c.Query("vendor")),
	}
	if params.Limit < 1 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	records, total, err := h.db.ListRecords(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list catalog records")
	}
	if records == nil {
		records = []*models.CatalogRecord{}
	}

	return SuccessWithMeta(c, records, total, params.Limit, params.Offset)
}

// SearchRecords performs a fuzzy search over the catalog
func (h *Handler) SearchRecords(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return Error(c, fiber.StatusBadRequest, "query parameter 'q' is required")
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := h.db.SearchRecords(c.Context(), query, limit)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "search failed")
	}
	if records == nil {
		records = []*models.CatalogRecord{}
	}

	return Success(c, records)
}

// GetRecord returns a single catalog record
func (h *Handler) GetRecord(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid record id")
	}

	record, err := h.db.GetRecordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get record")
	}

	return Success(c, record)
}

// CreateRecord creates a catalog record, computing normalized fields at
// this ingestion boundary so the engine only ever sees one shape.
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	var req models.CreateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.ProductName == "" || req.Vendor == "" {
		return Error(c, fiber.StatusBadRequest, "product_name and vendor are required")
	}

	rec := h.buildRecord(&req)

	created, err := h.db.CreateRecord(c.Context(), rec)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to create record")
	}

	return c.Status(fiber.StatusCreated).JSON(APIResponse{Success: true, Data: created})
}

// UpdateRecord updates a catalog record and recomputes its normalized
// fields from the merged values.
func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid record id")
	}

	var req models.UpdateRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	existing, err := h.db.GetRecordByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get record")
	}

	merged := mergeRecordUpdate(existing, &req)
	rec := h.buildRecord(&merged)
	rec.ID = id

	updated, err := h.db.UpdateRecord(c.Context(), rec)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to update record")
	}

	return Success(c, updated)
}

// DeleteRecord deletes a catalog record
func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid record id")
	}

	if err := h.db.DeleteRecord(c.Context(), id); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return Error(c, fiber.StatusNotFound, "record not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete record")
	}

	return Success(c, fiber.Map{"deleted": id})
}

// GetCatalogStats returns aggregate catalog statistics
func (h *Handler) GetCatalogStats(c *fiber.Ctx) error {
	stats, err := h.db.GetCatalogStats(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to get catalog stats")
	}

	return Success(c, stats)
}

// ReloadCatalog rebuilds the candidate index from the current catalog and
// swaps it in. Batches already running keep their snapshot.
func (h *Handler) ReloadCatalog(c *fiber.Ctx) error {
	size, err := h.matcher.Reload(c.Context())
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to rebuild catalog index")
	}

	return Success(c, fiber.Map{"indexed_records": size})
}

// buildRecord computes the normalized fields and category bucket for a
// create request.
func (h *Handler) buildRecord(req *models.CreateRecordRequest) *models.CatalogRecord {
	rec := &models.CatalogRecord{
		ProductName:      req.ProductName,
		NormalizedName:   h.normalizer.NormalizeName(req.ProductName),
		Vendor:           req.Vendor,
		NormalizedVendor: h.normalizer.Normalize(req.Vendor),
		Brand:            req.Brand,
		ProductType:      req.ProductType,
		Strain:           req.Strain,
		Price:            req.Price,
		WeightGrams:      req.WeightGrams,
		Lineage:          req.Lineage,
	}

	if req.Brand != nil {
		normBrand := h.normalizer.Normalize(*req.Brand)
		rec.NormalizedBrand = &normBrand
	}
	productType := ""
	if req.ProductType != nil {
		productType = *req.ProductType
		normType := h.normalizer.Normalize(productType)
		rec.NormalizedType = &normType
	}
	rec.CategoryBucket = string(h.normalizer.BucketForType(productType))

	return rec
}

// mergeRecordUpdate overlays an update request on an existing record.
func mergeRecordUpdate(existing *models.CatalogRecord, req *models.UpdateRecordRequest) models.CreateRecordRequest {
	merged := models.CreateRecordRequest{
		ProductName: existing.ProductName,
		Vendor:      existing.Vendor,
		Brand:       existing.Brand,
		ProductType: existing.ProductType,
		Strain:      existing.Strain,
		Price:       existing.Price,
		WeightGrams: existing.WeightGrams,
		Lineage:     existing.Lineage,
	}

	if req.ProductName != nil {
		merged.ProductName = *req.ProductName
	}
	if req.Vendor != nil {
		merged.Vendor = *req.Vendor
	}
	if req.Brand != nil {
		merged.Brand = req.Brand
	}
	if req.ProductType != nil {
		merged.ProductType = req.ProductType
	}
	if req.Strain != nil {
		merged.Strain = req.Strain
	}
	if req.Price != nil {
		merged.Price = req.Price
	}
	if req.WeightGrams != nil {
		merged.WeightGrams = req.WeightGrams
	}
	if req.Lineage != nil {
		merged.Lineage = req.Lineage
	}

	return merged
}

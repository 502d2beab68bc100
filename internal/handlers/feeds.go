package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/middleware"
	"github.com/verdantlabs/menu-match/internal/models"
)

// MatchFeed runs a feed upload through the engine in fast mode: anything
// at or above the acceptance threshold is auto-accepted, everything else
// surfaces as unmatched.
func (h *Handler) MatchFeed(c *fiber.Ctx) error {
	return h.runFeed(c, models.ModeFast)
}

// ReviewFeed runs a feed upload in detailed mode, returning ranked
// alternatives with full score breakdowns for human review.
func (h *Handler) ReviewFeed(c *fiber.Ctx) error {
	return h.runFeed(c, models.ModeDetailed)
}

func (h *Handler) runFeed(c *fiber.Ctx, mode models.MatchMode) error {
	body := c.Body()
	if len(body) == 0 {
		return Error(c, fiber.StatusBadRequest, "empty feed body")
	}

	source := c.Query("source", "upload")

	items, skipped, err := h.parser.Parse(body)
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "unparseable feed: "+err.Error())
	}
	if len(items) == 0 {
		return Error(c, fiber.StatusBadRequest, "feed contains no usable listings")
	}

	// Archive the raw document first so the run can be audited even if
	// matching fails. Archive failures are logged, not fatal.
	var s3Key *string
	if h.archive != nil {
		key, err := h.archive.ArchiveFeed(c.Context(), source, body)
		if err != nil {
			log.Printf("Warning: failed to archive feed from %s: %v", source, err)
		} else {
			s3Key = &key
		}
	}

	results, err := h.matcher.MatchItems(c.Context(), items, mode)
	if err != nil {
		return Error(c, fiber.StatusServiceUnavailable, "matching engine not ready")
	}

	userID := middleware.GetUserID(c)
	var createdBy *int
	if userID != 0 {
		createdBy = &userID
	}

	batch, err := h.db.CreateBatch(c.Context(), source, mode, s3Key, createdBy, results)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to persist match batch")
	}

	accepted := 0
	for _, r := range results {
		if r.Status == models.MatchStatusAutoAccepted {
			accepted++
		}
	}

	return Success(c, models.MatchFeedResponse{
		BatchID:  batch.ID,
		Mode:     mode,
		Skipped:  skipped,
		Results:  results,
		Accepted: accepted,
	})
}

// ListBatches returns recent match batches
func (h *Handler) ListBatches(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	batches, total, err := h.db.ListBatches(c.Context(), limit, offset)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list batches")
	}
	if batches == nil {
		batches = []*models.MatchBatch{}
	}

	return SuccessWithMeta(c, batches, total, limit, offset)
}

// GetBatch returns a persisted batch with its items
func (h *Handler) GetBatch(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid batch id")
	}

	batch, err := h.db.GetBatchByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBatchNotFound) {
			return Error(c, fiber.StatusNotFound, "batch not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get batch")
	}

	return Success(c, batch)
}

// GetBatchFeed returns a short-lived download link for the raw feed
// document a batch was built from.
func (h *Handler) GetBatchFeed(c *fiber.Ctx) error {
	if h.archive == nil {
		return Error(c, fiber.StatusNotImplemented, "feed archiving is not configured")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid batch id")
	}

	batch, err := h.db.GetBatchByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrBatchNotFound) {
			return Error(c, fiber.StatusNotFound, "batch not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to get batch")
	}
	if batch.S3Key == nil {
		return Error(c, fiber.StatusNotFound, "batch has no archived feed")
	}

	url, err := h.archive.GetPresignedURL(c.Context(), *batch.S3Key, 15*time.Minute)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate download link")
	}

	return Success(c, fiber.Map{"url": url, "expires_in_seconds": int((15 * time.Minute).Seconds())})
}

// ConfirmBatchItem records the human's final accept/reject/override for
// one batch item. The engine never learns from this; it is caller-side
// state only.
func (h *Handler) ConfirmBatchItem(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid batch id")
	}
	itemIndex, err := strconv.Atoi(c.Params("item_index"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid item index")
	}

	var req models.ConfirmItemRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	switch req.Decision {
	case models.DecisionAccepted, models.DecisionRejected, models.DecisionOverride:
	default:
		return Error(c, fiber.StatusBadRequest, "decision must be accepted, rejected, or override")
	}

	if req.Decision == models.DecisionOverride && req.RecordID == nil {
		return Error(c, fiber.StatusBadRequest, "override requires a record_id")
	}

	if req.RecordID != nil {
		if _, err := h.db.GetRecordByID(c.Context(), *req.RecordID); err != nil {
			if errors.Is(err, database.ErrRecordNotFound) {
				return Error(c, fiber.StatusBadRequest, "record_id does not exist")
			}
			return Error(c, fiber.StatusInternalServerError, "failed to verify record")
		}
	}

	item, err := h.db.ConfirmBatchItem(c.Context(), batchID, itemIndex, req.Decision, req.RecordID, middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, database.ErrBatchItemNotFound) {
			return Error(c, fiber.StatusNotFound, "batch item not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to record decision")
	}

	return Success(c, item)
}

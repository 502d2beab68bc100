package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/verdantlabs/menu-match/internal/models"
)

var (
	ErrBatchNotFound     = errors.New("match batch not found")
	ErrBatchItemNotFound = errors.New("match batch item not found")
)

// CreateBatch records one feed-matching run and its per-item results. The
// engine itself keeps nothing; this is the caller-side persistence of the
// human review workflow.
func (db *DB) CreateBatch(ctx context.Context, source string, mode models.MatchMode, s3Key *string, createdBy *int, results []models.MatchResult) (*models.MatchBatch, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	batch := &models.MatchBatch{}
	err = tx.QueryRow(ctx, `
		INSERT INTO match_batches (source, mode, s3_key, item_count, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, source, mode, s3_key, item_count, created_by, created_at
	`, source, mode, s3Key, len(results), createdBy).Scan(
		&batch.ID, &batch.Source, &batch.Mode, &batch.S3Key, &batch.ItemCount, &batch.CreatedBy, &batch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	for i, result := range results {
		var score *float64
		var recordID *int
		if result.Best != nil {
			s := result.Best.Score
			score = &s
			id := result.Best.Record.ID
			recordID = &id
		}
		decision := models.DecisionPending
		if result.Status == models.MatchStatusAutoAccepted {
			decision = models.DecisionAccepted
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO match_batch_items (batch_id, item_index, display_name, vendor, status, score, matched_record_id, decision, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, batch.ID, i, result.Item.DisplayName, result.Item.Vendor, result.Status, score, recordID, decision)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return batch, nil
}

// GetBatchByID retrieves a batch with its persisted items
func (db *DB) GetBatchByID(ctx context.Context, id int) (*models.BatchWithItems, error) {
	batch := &models.BatchWithItems{}
	err := db.Pool.QueryRow(ctx, `
		SELECT id, source, mode, s3_key, item_count, created_by, created_at
		FROM match_batches WHERE id = $1
	`, id).Scan(
		&batch.ID, &batch.Source, &batch.Mode, &batch.S3Key, &batch.ItemCount, &batch.CreatedBy, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, batch_id, item_index, display_name, vendor, status, score, matched_record_id, decision, decided_by, decided_at, created_at
		FROM match_batch_items
		WHERE batch_id = $1
		ORDER BY item_index ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := models.BatchItem{}
		err := rows.Scan(
			&item.ID, &item.BatchID, &item.ItemIndex, &item.DisplayName, &item.Vendor,
			&item.Status, &item.Score, &item.MatchedRecordID, &item.Decision,
			&item.DecidedBy, &item.DecidedAt, &item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		batch.Items = append(batch.Items, item)
	}

	return batch, rows.Err()
}

// ListBatches returns recent batches, newest first
func (db *DB) ListBatches(ctx context.Context, limit, offset int) ([]*models.MatchBatch, int, error) {
	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM match_batches`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, source, mode, s3_key, item_count, created_by, created_at
		FROM match_batches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []*models.MatchBatch
	for rows.Next() {
		b := &models.MatchBatch{}
		if err := rows.Scan(&b.ID, &b.Source, &b.Mode, &b.S3Key, &b.ItemCount, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, 0, err
		}
		batches = append(batches, b)
	}

	return batches, total, rows.Err()
}

// ConfirmBatchItem records a human review decision for one batch item.
func (db *DB) ConfirmBatchItem(ctx context.Context, batchID, itemIndex int, decision models.BatchItemDecision, recordID *int, decidedBy int) (*models.BatchItem, error) {
	now := time.Now()
	item := &models.BatchItem{}

	err := db.Pool.QueryRow(ctx, `
		UPDATE match_batch_items
		SET decision = $3,
		    matched_record_id = COALESCE($4, matched_record_id),
		    decided_by = $5,
		    decided_at = $6
		WHERE batch_id = $1 AND item_index = $2
		RETURNING id, batch_id, item_index, display_name, vendor, status, score, matched_record_id, decision, decided_by, decided_at, created_at
	`, batchID, itemIndex, decision, recordID, decidedBy, now).Scan(
		&item.ID, &item.BatchID, &item.ItemIndex, &item.DisplayName, &item.Vendor,
		&item.Status, &item.Score, &item.MatchedRecordID, &item.Decision,
		&item.DecidedBy, &item.DecidedAt, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchItemNotFound
		}
		return nil, err
	}

	return item, nil
}

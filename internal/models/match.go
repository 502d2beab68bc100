package models

import (
	"time"
)

// MatchMode selects the batch matching protocol.
type MatchMode string

const (
	// ModeFast returns at most one accepted match per item, gated by the
	// acceptance threshold. Intended for bulk, low-friction ingestion.
	ModeFast MatchMode = "fast"
	// ModeDetailed returns ranked alternatives with full score breakdowns
	// for a human accept/reject/override workflow.
	ModeDetailed MatchMode = "detailed"
)

// MatchStatus is the per-item outcome of a matching call.
type MatchStatus string

const (
	MatchStatusAutoAccepted MatchStatus = "auto_accepted"
	MatchStatusNeedsReview  MatchStatus = "needs_review"
	MatchStatusNoCandidate  MatchStatus = "no_candidate"
	MatchStatusInvalidInput MatchStatus = "invalid_input"

	// MatchStatusCancelled marks items the batch never got to because the
	// caller's context ended. Distinct from invalid_input, which is about
	// the item itself.
	MatchStatusCancelled MatchStatus = "cancelled"
)

// IncomingItem is one externally-sourced listing to be matched. Read-only
// input to the engine; the feed parser collapses whatever key variants the
// source uses into this one shape.
type IncomingItem struct {
	DisplayName string `json:"display_name"`
	Vendor      string `json:"vendor"`
	Brand       string `json:"brand,omitempty"`
	ProductType string `json:"product_type,omitempty"`
	Strain      string `json:"strain,omitempty"`
	Quantity    int    `json:"quantity"`
}

// ScoreBreakdown records every intermediate of the confidence computation
// for auditability and the detailed-review UI.
type ScoreBreakdown struct {
	VendorConfidence float64 `json:"vendor_confidence"`
	BrandSimilarity  float64 `json:"brand_similarity"`
	BrandBonus       float64 `json:"brand_bonus"`
	OverlapRatio     float64 `json:"overlap_ratio"`
	OverlapBase      float64 `json:"overlap_base"`
	CategoryPenalty  float64 `json:"category_penalty"`
	StrainBonus      float64 `json:"strain_bonus"`
}

// MatchCandidate is produced per (incoming item, catalog record) pair
// during scoring. Never persisted; it exists only for the duration of one
// matching call.
type MatchCandidate struct {
	Record    *CatalogRecord `json:"record"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Reasons   []string       `json:"reasons"`
}

// MatchResult is the engine's output for one incoming item. In detailed
// mode Alternatives is the full ranked top-K with the best candidate at
// index 0; Best duplicates its head so fast and detailed results read the
// same way. Callers wanting strictly-other candidates skip the first
// entry.
type MatchResult struct {
	Item         IncomingItem     `json:"item"`
	Status       MatchStatus      `json:"status"`
	Best         *MatchCandidate  `json:"best,omitempty"`
	Alternatives []MatchCandidate `json:"alternatives,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// MatchBatch represents one persisted feed-matching run.
type MatchBatch struct {
	ID        int       `json:"id"`
	Source    string    `json:"source"`
	Mode      MatchMode `json:"mode"`
	S3Key     *string   `json:"s3_key,omitempty"`
	ItemCount int       `json:"item_count"`
	CreatedBy *int      `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchItemDecision is the status of a batch item after any human review.
type BatchItemDecision string

const (
	DecisionPending  BatchItemDecision = "pending"
	DecisionAccepted BatchItemDecision = "accepted"
	DecisionRejected BatchItemDecision = "rejected"
	DecisionOverride BatchItemDecision = "override"
)

// BatchItem is one persisted item of a match batch, carrying the engine
// result and the human's final choice.
type BatchItem struct {
	ID              int               `json:"id"`
	BatchID         int               `json:"batch_id"`
	ItemIndex       int               `json:"item_index"`
	DisplayName     string            `json:"display_name"`
	Vendor          string            `json:"vendor"`
	Status          MatchStatus       `json:"status"`
	Score           *float64          `json:"score,omitempty"`
	MatchedRecordID *int              `json:"matched_record_id,omitempty"`
	Decision        BatchItemDecision `json:"decision"`
	DecidedBy       *int              `json:"decided_by,omitempty"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// BatchWithItems includes the persisted items of a batch.
type BatchWithItems struct {
	MatchBatch
	Items []BatchItem `json:"items"`
}

// ConfirmItemRequest is the request body for recording a review decision
type ConfirmItemRequest struct {
	Decision BatchItemDecision `json:"decision"`
	RecordID *int              `json:"record_id,omitempty"`
}

// MatchFeedResponse is returned from a feed matching call
type MatchFeedResponse struct {
	BatchID  int           `json:"batch_id"`
	Mode     MatchMode     `json:"mode"`
	Skipped  int           `json:"skipped"`
	Results  []MatchResult `json:"results"`
	Accepted int           `json:"accepted"`
}

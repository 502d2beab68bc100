package matching

import (
	"context"
	"strings"
	"sync"

	"github.com/verdantlabs/menu-match/internal/models"
)

// Matcher orchestrates a full batch: per item it retrieves candidates from
// the index, scores them, ranks them, and emits a MatchResult. Stateless
// across batches; safe for concurrent use over an immutable index.
type Matcher struct {
	cfg    Config
	scorer *Scorer
}

// NewMatcher creates a batch matcher around a scorer.
func NewMatcher(cfg Config, scorer *Scorer) *Matcher {
	return &Matcher{cfg: cfg, scorer: scorer}
}

// MatchBatch matches every item independently and returns results in input
// order. Items fan out across a bounded worker pool, each reading the
// shared read-only index. A malformed item (missing vendor) fails that
// item only; cancellation stops unstarted items, which come back cancelled
// with the context error.
func (m *Matcher) MatchBatch(ctx context.Context, items []models.IncomingItem, index *Index, mode models.MatchMode) []models.MatchResult {
	results := make([]models.MatchResult, len(items))
	if len(items) == 0 {
		return results
	}

	workers := m.cfg.Workers
	if workers <= 1 || len(items) == 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				results[i] = cancelledResult(item, err)
				continue
			}
			results[i] = m.matchOne(ctx, item, index, mode)
		}
		return results
	}
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = cancelledResult(items[i], err)
					continue
				}
				results[i] = m.matchOne(ctx, items[i], index, mode)
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// matchOne runs the candidate → score → rank pipeline for a single item.
func (m *Matcher) matchOne(ctx context.Context, item models.IncomingItem, index *Index, mode models.MatchMode) models.MatchResult {
	if strings.TrimSpace(item.Vendor) == "" {
		return invalidResult(item, "incoming item has no vendor")
	}

	if index == nil || index.Size() == 0 {
		// An empty catalog is a valid, degenerate state: nothing matches.
		return models.MatchResult{Item: item, Status: models.MatchStatusNoCandidate}
	}

	records := index.Lookup(item)
	if len(records) == 0 {
		return models.MatchResult{Item: item, Status: models.MatchStatusNoCandidate}
	}

	candidates := make([]models.MatchCandidate, 0, len(records))
	for _, rec := range records {
		candidates = append(candidates, m.scorer.Score(ctx, item, rec))
	}

	return Select(item, Rank(candidates), mode, m.cfg)
}

func invalidResult(item models.IncomingItem, msg string) models.MatchResult {
	return models.MatchResult{
		Item:   item,
		Status: models.MatchStatusInvalidInput,
		Error:  msg,
	}
}

func cancelledResult(item models.IncomingItem, err error) models.MatchResult {
	return models.MatchResult{
		Item:   item,
		Status: models.MatchStatusCancelled,
		Error:  err.Error(),
	}
}

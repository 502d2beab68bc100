package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/verdantlabs/menu-match/internal/database"
	"github.com/verdantlabs/menu-match/internal/matching"
	"github.com/verdantlabs/menu-match/internal/models"
)

// engineSnapshot binds one immutable catalog index to the resolver and
// matcher built with the alias tables current at load time. Swapped as a
// unit so an in-flight batch keeps a consistent view while a reload
// happens underneath it.
type engineSnapshot struct {
	index   *matching.Index
	matcher *matching.Matcher
}

// MatchService owns the matching engine and its catalog snapshot. Reload
// builds a fresh snapshot and swaps it atomically; batches in progress
// keep using the snapshot they started with.
type MatchService struct {
	db       *database.DB
	baseCfg  matching.Config
	provider matching.SimilarityProvider

	snapshot atomic.Pointer[engineSnapshot]
}

// NewMatchService creates the service. Call Reload before matching. The
// provider may be nil for lexical-only operation.
func NewMatchService(db *database.DB, cfg matching.Config, provider matching.SimilarityProvider) *MatchService {
	return &MatchService{
		db:       db,
		baseCfg:  cfg,
		provider: provider,
	}
}

// Reload loads the alias tables and catalog from the database, rebuilds
// the candidate index, and swaps it in. Returns the number of records
// indexed.
func (s *MatchService) Reload(ctx context.Context) (int, error) {
	cfg := s.baseCfg

	vendorGroups, err := s.db.ListAliasGroups(ctx, database.AliasKindVendor)
	if err != nil {
		return 0, fmt.Errorf("load vendor aliases: %w", err)
	}
	strainGroups, err := s.db.ListAliasGroups(ctx, database.AliasKindStrain)
	if err != nil {
		return 0, fmt.Errorf("load strain aliases: %w", err)
	}
	cfg.VendorAliases = aliasNames(vendorGroups)
	cfg.StrainAliases = aliasNames(strainGroups)

	records, err := s.db.LoadCatalog(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}

	normalizer := matching.NewNormalizer(cfg.StopWords)
	resolver := matching.NewVendorResolver(cfg, normalizer, s.provider)
	scorer := matching.NewScorer(cfg, normalizer, resolver, s.provider)
	index := matching.BuildIndex(records, normalizer, resolver)

	s.snapshot.Store(&engineSnapshot{
		index:   index,
		matcher: matching.NewMatcher(cfg, scorer),
	})

	log.Printf("catalog index rebuilt: %d records, %d vendors, %d vendor alias groups",
		index.Size(), index.Vendors(), len(cfg.VendorAliases))
	return index.Size(), nil
}

// MatchItems runs a batch against the current snapshot.
func (s *MatchService) MatchItems(ctx context.Context, items []models.IncomingItem, mode models.MatchMode) ([]models.MatchResult, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, fmt.Errorf("catalog index not built")
	}
	return snap.matcher.MatchBatch(ctx, items, snap.index, mode), nil
}

// IndexSize returns the record count of the current snapshot, or zero when
// no snapshot has been built.
func (s *MatchService) IndexSize() int {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.index.Size()
	}
	return 0
}

func aliasNames(groups []*models.VendorAliasGroup) [][]string {
	names := make([][]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Names)
	}
	return names
}

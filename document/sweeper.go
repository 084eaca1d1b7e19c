package document

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/tenant"
)

// Sweeper physically removes expired document chunks. Expired chunks are
// already invisible to search (the expiry filter), so sweeping is purely
// reclamation and may run concurrently with reads and writes.
type Sweeper struct {
	index memory.Index
}

// NewSweeper creates a Sweeper over the given index.
func NewSweeper(index memory.Index) *Sweeper {
	return &Sweeper{index: index}
}

// CleanupExpired sweeps one tenant's document collection and returns the
// number of chunks removed. Idempotent: a second run with nothing newly
// expired removes zero.
func (s *Sweeper) CleanupExpired(ctx context.Context, sessionID, platform string) int {
	key := tenant.NewKey(platform, sessionID)
	removed, err := s.sweepCollection(ctx, key.DocumentCollection())
	if err != nil {
		log.Printf("[SWEEP] Cleanup failed for session %s: %v", sessionID, err)
		return 0
	}
	if removed > 0 {
		log.Printf("[SWEEP] Removed %d expired chunks for session %s", removed, sessionID)
	}
	return removed
}

// CleanupAll sweeps every document collection, recognized by the docs_
// name prefix. A failing collection is logged and skipped; the sweep
// continues.
func (s *Sweeper) CleanupAll(ctx context.Context) int {
	names, err := s.index.ListCollections(ctx)
	if err != nil {
		log.Printf("[SWEEP] Failed to list collections: %v", err)
		return 0
	}

	total := 0
	for _, name := range names {
		if !strings.HasPrefix(name, tenant.DocumentPrefix) {
			continue
		}
		removed, err := s.sweepCollection(ctx, name)
		if err != nil {
			log.Printf("[SWEEP] Error cleaning collection %s: %v", name, err)
			continue
		}
		if removed > 0 {
			log.Printf("[SWEEP] Removed %d expired chunks from %s", removed, name)
		}
		total += removed
	}

	log.Printf("[SWEEP] Cleanup completed, removed %d expired chunks", total)
	return total
}

func (s *Sweeper) sweepCollection(ctx context.Context, collection string) (int, error) {
	recs, err := s.index.GetAll(ctx, collection)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	var expired []string
	for _, r := range recs {
		if Expired(r.Metadata, now) {
			expired = append(expired, r.ID)
		}
	}
	if len(expired) == 0 {
		return 0, nil
	}

	return s.index.Delete(ctx, collection, nil, expired...)
}

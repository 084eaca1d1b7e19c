// Package chromem implements memory.Index on chromem-go, a pure Go
// embedded vector database with named collections and cosine similarity.
package chromem

import (
	"context"
	"fmt"
	"log"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/memory"
)

// Store wraps a chromem-go database. Embeddings are always supplied by the
// caller, so no embedding function is registered with the collections;
// chromem normalizes vectors on insert and ranks queries by cosine
// similarity, which the adapter surfaces directly (no distance-to-
// similarity conversion is needed or valid here).
type Store struct {
	db   *chromem.DB
	dims int
}

// New opens a persistent store at path. dims is the embedding width, used
// to build probe vectors for full-collection scans.
func New(path string, dims int) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("open persistent db: %w", err)
	}
	log.Printf("[CHROMEM] Persistent store opened at %s", path)
	return &Store{db: db, dims: dims}, nil
}

// NewInMemory creates a non-persistent store, mainly for tests.
func NewInMemory(dims int) *Store {
	return &Store{db: chromem.NewDB(), dims: dims}
}

// Upsert writes the records into the named collection, creating it on
// first use.
func (s *Store) Upsert(ctx context.Context, collection string, recs []memory.Record) error {
	if len(recs) == 0 {
		return nil
	}

	col, err := s.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: get or create collection %s: %v", core.ErrIndex, collection, err)
	}

	docs := make([]chromem.Document, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, chromem.Document{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata:  r.Metadata,
		})
	}

	if err := col.AddDocuments(ctx, docs, 4); err != nil {
		return fmt.Errorf("%w: add documents to %s: %v", core.ErrIndex, collection, err)
	}
	return nil
}

// Query returns up to k results ordered most-similar-first. A collection
// that does not exist yet returns no results.
func (s *Store) Query(ctx context.Context, collection string, embedding []float32, k int, where map[string]string) ([]core.SearchResult, error) {
	col := s.db.GetCollection(collection, nil)
	if col == nil {
		return nil, nil
	}

	if n := col.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	// chromem rejects nResults larger than the (filtered) document count,
	// so shrink and retry until the query fits.
	var results []chromem.Result
	for limit := k; limit >= 1; limit-- {
		var err error
		results, err = col.QueryEmbedding(ctx, embedding, limit, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if limit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("%w: query %s: %v", core.ErrIndex, collection, err)
	}

	out := make([]core.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, core.SearchResult{
			ID:         r.ID,
			Text:       r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

// GetAll returns every record in the collection. chromem has no direct
// enumeration API, so this issues a full-size query with a probe vector.
func (s *Store) GetAll(ctx context.Context, collection string) ([]memory.Record, error) {
	col := s.db.GetCollection(collection, nil)
	if col == nil {
		return nil, nil
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}

	probe := make([]float32, s.dims)
	probe[0] = 1

	results, err := col.QueryEmbedding(ctx, probe, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %v", core.ErrIndex, collection, err)
	}

	recs := make([]memory.Record, 0, len(results))
	for _, r := range results {
		recs = append(recs, memory.Record{
			ID:        r.ID,
			Content:   r.Content,
			Embedding: r.Embedding,
			Metadata:  r.Metadata,
		})
	}
	return recs, nil
}

// Delete removes records by metadata filter and/or explicit ids, returning
// the number removed. The filter path pre-scans the collection so the
// caller gets an accurate count.
func (s *Store) Delete(ctx context.Context, collection string, where map[string]string, ids ...string) (int, error) {
	col := s.db.GetCollection(collection, nil)
	if col == nil {
		return 0, nil
	}

	targets := ids
	if len(where) > 0 {
		recs, err := s.GetAll(ctx, collection)
		if err != nil {
			return 0, err
		}
		for _, r := range recs {
			if matchesWhere(r.Metadata, where) {
				targets = append(targets, r.ID)
			}
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	before := col.Count()
	if err := col.Delete(ctx, nil, nil, targets...); err != nil {
		return 0, fmt.Errorf("%w: delete from %s: %v", core.ErrIndex, collection, err)
	}
	removed := before - col.Count()
	if removed < 0 {
		removed = 0
	}
	return removed, nil
}

// DeleteCollection drops the named collection; missing collections are a
// no-op.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if s.db.GetCollection(name, nil) == nil {
		return nil
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("%w: delete collection %s: %v", core.ErrIndex, name, err)
	}
	return nil
}

// ListCollections returns the names of all collections.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	cols := s.db.ListCollections()
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	return names, nil
}

func matchesWhere(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// isInsufficientDocsError reports whether the error is chromem rejecting
// an nResults larger than the collection's document count.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

package memory

import (
	"context"

	"github.com/recallhq/recall-go-sdk/core"
)

// Embedder converts text to a fixed-length vector.
// Implementations: mock (testing), ONNX (local all-MiniLM-L6-v2).
// Decorators: CachedEmbedder (ristretto), BoundedEmbedder (semaphore).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Record is one stored item in a vector collection: content plus its
// embedding and flat string metadata.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Index is the vector store boundary. Collections are named, isolated
// namespaces; operations on different collections never interfere.
//
// Metadata filters (where) are exact-match on string values. Range
// conditions such as expiry are enforced by callers after the query.
type Index interface {
	// Upsert writes records into a collection as one batch; the batch is
	// all-or-nothing at this call.
	Upsert(ctx context.Context, collection string, recs []Record) error

	// Query returns up to k nearest records ordered by the index's own
	// ranking (most similar first). Similarity is normalized cosine,
	// higher = closer.
	Query(ctx context.Context, collection string, embedding []float32, k int, where map[string]string) ([]core.SearchResult, error)

	// GetAll returns every record in a collection, for metadata scans.
	GetAll(ctx context.Context, collection string) ([]Record, error)

	// Delete removes records matching the where filter and/or the given
	// ids, returning how many were removed. A missing collection removes
	// zero.
	Delete(ctx context.Context, collection string, where map[string]string, ids ...string) (int, error)

	// DeleteCollection drops a whole collection. Missing collections are
	// not an error.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)
}

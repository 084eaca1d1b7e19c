package memory

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// BoundedEmbedder caps the number of in-flight Embed calls. The model's
// internal batch buffers grow with concurrency, so an unbounded fan-in of
// request handlers would grow memory without bound; callers block until a
// slot frees up or their context is done.
type BoundedEmbedder struct {
	inner Embedder
	sem   *semaphore.Weighted
}

// NewBoundedEmbedder wraps an embedder with a concurrency limit.
// A limit <= 0 defaults to 4.
func NewBoundedEmbedder(inner Embedder, limit int64) *BoundedEmbedder {
	if limit <= 0 {
		limit = 4
	}
	return &BoundedEmbedder{
		inner: inner,
		sem:   semaphore.NewWeighted(limit),
	}
}

// Embed acquires a slot, runs the inner embedder, and releases the slot.
func (b *BoundedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer b.sem.Release(1)
	return b.inner.Embed(ctx, text)
}

// Dimensions returns the inner embedder's vector size.
func (b *BoundedEmbedder) Dimensions() int {
	return b.inner.Dimensions()
}

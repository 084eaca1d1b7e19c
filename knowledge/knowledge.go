// Package knowledge manages the shared global knowledge base: one
// non-tenant, non-expiring collection available to every user. Chunks with
// the same source name form one logical document and are deleted together.
package knowledge

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/document"
	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/tenant"
)

const sampleContentLength = 200 // runes

// Manager owns the global knowledge collection. It shares the document
// package's extraction and splitting pipeline but writes without a tenant
// and without an expiration.
type Manager struct {
	index            memory.Index
	embedder         memory.Embedder
	splitter         *document.Splitter
	embedConcurrency int
}

// NewManager creates a Manager using the document config's chunking knobs.
// A nil config uses document.DefaultConfig.
func NewManager(index memory.Index, embedder memory.Embedder, config *document.Config) *Manager {
	if config == nil {
		config = document.DefaultConfig
	}
	return &Manager{
		index:            index,
		embedder:         embedder,
		splitter:         document.NewSplitter(config.ChunkSize, config.ChunkOverlap),
		embedConcurrency: config.EmbedConcurrency,
	}
}

// Add ingests a document into the global knowledge base under sourceName,
// which later serves as the deletion key. Returns false on unsupported
// content, empty extraction, or any downstream failure.
func (m *Manager) Add(ctx context.Context, data []byte, contentType, sourceName string, meta map[string]any) bool {
	source, err := document.SourceFor(contentType, data)
	if err != nil {
		log.Printf("[KNOWLEDGE] Rejecting upload %q: %v", sourceName, err)
		return false
	}

	units, err := source.Extract()
	if err != nil {
		log.Printf("[KNOWLEDGE] Extraction failed for %q: %v", sourceName, err)
		return false
	}
	if len(units) == 0 {
		log.Printf("[KNOWLEDGE] No content chunks generated from %q", sourceName)
		return false
	}

	addedDate := time.Now().Format(time.RFC3339)
	extra := memory.FlattenMetadata(meta)

	var recs []memory.Record
	chunkIndex := 0
	for _, unit := range units {
		for _, chunk := range m.splitter.Split(unit.Text) {
			chunkIndex++
			metadata := map[string]string{
				"type":         "global_knowledge",
				"source":       sourceName,
				"content_type": contentType,
				"added_date":   addedDate,
			}
			switch {
			case unit.Page > 0:
				metadata["page"] = fmt.Sprintf("%d", unit.Page)
			case unit.Row > 0:
				metadata["row"] = fmt.Sprintf("%d", unit.Row)
				metadata["columns"] = unit.Columns
			default:
				metadata["chunk"] = fmt.Sprintf("%d", chunkIndex)
			}
			for k, v := range extra {
				metadata[k] = v
			}
			recs = append(recs, memory.Record{
				ID:       "global_" + uuid.NewString(),
				Content:  chunk,
				Metadata: metadata,
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.embedConcurrency)
	for i := range recs {
		i := i
		g.Go(func() error {
			embedding, err := m.embedder.Embed(gctx, recs[i].Content)
			if err != nil {
				return fmt.Errorf("%w: %v", core.ErrEmbedding, err)
			}
			recs[i].Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("[KNOWLEDGE] Failed to embed %q: %v", sourceName, err)
		return false
	}

	if err := m.index.Upsert(ctx, tenant.KnowledgeCollection, recs); err != nil {
		log.Printf("[KNOWLEDGE] Failed to store %q: %v", sourceName, err)
		return false
	}

	log.Printf("[KNOWLEDGE] Added %d chunks from %q", len(recs), sourceName)
	return true
}

// Search returns up to limit knowledge chunks ranked by similarity.
func (m *Manager) Search(ctx context.Context, query string, limit int) []core.DocumentHit {
	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[KNOWLEDGE] Failed to embed query: %v", err)
		return nil
	}

	results, err := m.index.Query(ctx, tenant.KnowledgeCollection, embedding, limit,
		map[string]string{"type": "global_knowledge"})
	if err != nil {
		log.Printf("[KNOWLEDGE] Search failed: %v", err)
		return nil
	}

	hits := make([]core.DocumentHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, core.DocumentHit{
			Content:    r.Text,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}

	log.Printf("[KNOWLEDGE] Search returned %d results", len(hits))
	return hits
}

// List returns one summary per distinct source: chunk count, content type,
// the date it was added, and a short sample of one chunk.
func (m *Manager) List(ctx context.Context) []core.KnowledgeSummary {
	recs, err := m.index.GetAll(ctx, tenant.KnowledgeCollection)
	if err != nil {
		log.Printf("[KNOWLEDGE] Failed to list knowledge base: %v", err)
		return nil
	}

	bySource := make(map[string]*core.KnowledgeSummary)
	for _, r := range recs {
		source := r.Metadata["source"]
		if source == "" {
			source = "Unknown"
		}
		summary, ok := bySource[source]
		if !ok {
			sample := r.Content
			if runes := []rune(sample); len(runes) > sampleContentLength {
				sample = string(runes[:sampleContentLength]) + "..."
			}
			summary = &core.KnowledgeSummary{
				Source:        source,
				ContentType:   r.Metadata["content_type"],
				AddedDate:     r.Metadata["added_date"],
				SampleContent: sample,
			}
			bySource[source] = summary
		}
		summary.ChunkCount++
	}

	summaries := make([]core.KnowledgeSummary, 0, len(bySource))
	for _, s := range bySource {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Source < summaries[j].Source
	})

	log.Printf("[KNOWLEDGE] Listed %d documents", len(summaries))
	return summaries
}

// DeleteDocument removes every chunk whose source equals the argument and
// returns the number removed; zero matches is not an error. The confirm
// flag must be set, guarding against accidental data loss.
func (m *Manager) DeleteDocument(ctx context.Context, sourceName string, confirm bool) (int, error) {
	if !confirm {
		return 0, core.ErrConfirmationRequired
	}

	removed, err := m.index.Delete(ctx, tenant.KnowledgeCollection,
		map[string]string{"source": sourceName})
	if err != nil {
		log.Printf("[KNOWLEDGE] Failed to delete %q: %v", sourceName, err)
		return 0, err
	}

	log.Printf("[KNOWLEDGE] Deleted %d chunks for document %q", removed, sourceName)
	return removed, nil
}

// Clear removes every chunk in the knowledge base and returns the number
// removed. Requires the confirm flag.
func (m *Manager) Clear(ctx context.Context, confirm bool) (int, error) {
	if !confirm {
		return 0, core.ErrConfirmationRequired
	}

	recs, err := m.index.GetAll(ctx, tenant.KnowledgeCollection)
	if err != nil {
		log.Printf("[KNOWLEDGE] Failed to enumerate knowledge base: %v", err)
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}

	removed, err := m.index.Delete(ctx, tenant.KnowledgeCollection, nil, ids...)
	if err != nil {
		log.Printf("[KNOWLEDGE] Failed to clear knowledge base: %v", err)
		return 0, err
	}

	log.Printf("[KNOWLEDGE] Cleared knowledge base, %d chunks deleted", removed)
	return removed, nil
}

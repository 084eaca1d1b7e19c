package document

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/tenant"
)

// Config holds document ingestion configuration.
type Config struct {
	// ChunkSize and ChunkOverlap bound the splitter windows.
	// Defaults: 500/50.
	ChunkSize    int
	ChunkOverlap int

	// DefaultTTLDays applies when AddDocument receives a negative
	// ttlDays. Zero is honored as "already expired". Default: 1.
	DefaultTTLDays int

	// EmbedConcurrency caps parallel chunk embedding. Default: 4.
	EmbedConcurrency int
}

// DefaultConfig returns the defaults used when no config is given.
var DefaultConfig = &Config{
	ChunkSize:        500,
	ChunkOverlap:     50,
	DefaultTTLDays:   1,
	EmbedConcurrency: 4,
}

// Manager chunks, embeds, and stores uploaded documents in the tenant's
// document collection, and searches the chunks that are still alive.
type Manager struct {
	index    memory.Index
	embedder memory.Embedder
	splitter *Splitter
	config   *Config
}

// NewManager creates a Manager. A nil config uses DefaultConfig.
func NewManager(index memory.Index, embedder memory.Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		index:    index,
		embedder: embedder,
		splitter: NewSplitter(config.ChunkSize, config.ChunkOverlap),
		config:   config,
	}
}

// AddDocument ingests one document for a tenant: dispatch on content type,
// split into chunks, stamp every chunk with the same expiration
// (now + ttlDays), embed, and upsert as a single batch. Returns false on
// unsupported content types, empty extractions, or any downstream failure;
// it never raises.
func (m *Manager) AddDocument(ctx context.Context, sessionID string, data []byte, contentType, sourceName, platform string, ttlDays int, meta map[string]any) bool {
	source, err := SourceFor(contentType, data)
	if err != nil {
		log.Printf("[DOCS] Rejecting upload for session %s: %v", sessionID, err)
		return false
	}

	units, err := source.Extract()
	if err != nil {
		log.Printf("[DOCS] Extraction failed for session %s: %v", sessionID, err)
		return false
	}
	if len(units) == 0 {
		log.Printf("[DOCS] No content extracted for session %s", sessionID)
		return false
	}

	if ttlDays < 0 {
		ttlDays = m.config.DefaultTTLDays
	}
	// One expiration per document: every chunk of this upload dies at the
	// same instant.
	expiration := time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour).Unix()

	key := tenant.NewKey(platform, sessionID)
	recs, err := m.buildChunks(ctx, sessionID, key.Platform, sourceName, source.Kind(), units, expiration, meta)
	if err != nil {
		log.Printf("[DOCS] Failed to embed document for session %s: %v", sessionID, err)
		return false
	}
	if len(recs) == 0 {
		return false
	}

	if err := m.index.Upsert(ctx, key.DocumentCollection(), recs); err != nil {
		log.Printf("[DOCS] Failed to store document for session %s: %v", sessionID, err)
		return false
	}

	log.Printf("[DOCS] Added document with %d chunks for session %s (%d day TTL)", len(recs), sessionID, ttlDays)
	return true
}

// buildChunks splits the units, embeds every chunk with bounded
// concurrency, and assembles the records for one batch upsert.
func (m *Manager) buildChunks(ctx context.Context, sessionID, platform, sourceName, kind string, units []Unit, expiration int64, meta map[string]any) ([]memory.Record, error) {
	extra := memory.FlattenMetadata(meta)

	var recs []memory.Record
	for _, unit := range units {
		for _, chunk := range m.splitter.Split(unit.Text) {
			id := fmt.Sprintf("doc_%s_%s", sessionID, uuid.NewString())
			metadata := map[string]string{
				"type":                 "document",
				"source":               sourceName,
				"session_id":           sessionID,
				"platform":             platform,
				"document_type":        kind,
				"expiration_timestamp": strconv.FormatInt(expiration, 10),
			}
			switch {
			case unit.Page > 0:
				id += fmt.Sprintf("_page_%d", unit.Page)
				metadata["page"] = strconv.Itoa(unit.Page)
			case unit.Row > 0:
				id += fmt.Sprintf("_row_%d", unit.Row)
				metadata["row"] = strconv.Itoa(unit.Row)
				metadata["columns"] = unit.Columns
			}
			for k, v := range extra {
				metadata[k] = v
			}
			recs = append(recs, memory.Record{ID: id, Content: chunk, Metadata: metadata})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.EmbedConcurrency)
	for i := range recs {
		i := i
		g.Go(func() error {
			embedding, err := m.embedder.Embed(gctx, recs[i].Content)
			if err != nil {
				return fmt.Errorf("%w: chunk %s: %v", core.ErrEmbedding, recs[i].ID, err)
			}
			recs[i].Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

// SearchDocuments returns up to limit live document chunks ranked by
// similarity to the query. The index filter is equality-only, so expiry is
// enforced here against a live clock; 2x over-fetch absorbs chunks that
// expire between the index query and this filter.
func (m *Manager) SearchDocuments(ctx context.Context, sessionID, query, platform string, limit int) []core.DocumentHit {
	key := tenant.NewKey(platform, sessionID)

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[DOCS] Failed to embed query for session %s: %v", sessionID, err)
		return nil
	}

	results, err := m.index.Query(ctx, key.DocumentCollection(), embedding, limit*2,
		map[string]string{"type": "document"})
	if err != nil {
		log.Printf("[DOCS] Document search failed for session %s: %v", sessionID, err)
		return nil
	}

	now := time.Now().Unix()
	hits := make([]core.DocumentHit, 0, len(results))
	for _, r := range results {
		if Expired(r.Metadata, now) {
			continue
		}
		hits = append(hits, core.DocumentHit{
			Content:    r.Text,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	log.Printf("[DOCS] Document search returned %d results for session %s", len(hits), sessionID)
	return hits
}

// Expired reports whether a chunk's expiration_timestamp has passed.
// Chunks without a parseable expiration never expire.
func Expired(metadata map[string]string, now int64) bool {
	raw, ok := metadata["expiration_timestamp"]
	if !ok {
		return false
	}
	expiration, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return expiration <= now
}

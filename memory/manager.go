package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/history"
	"github.com/recallhq/recall-go-sdk/tenant"
)

// Config holds Manager configuration.
type Config struct {
	// RecentLimit is the default number of recent turns for context
	// assembly. Default: 5.
	RecentLimit int

	// RelevantLimit is the default number of semantically relevant turns
	// for context assembly. Default: 3.
	RelevantLimit int
}

// DefaultConfig returns the defaults used when no config is given.
var DefaultConfig = &Config{
	RecentLimit:   5,
	RelevantLimit: 3,
}

// Manager writes conversation turns and serves recency and similarity
// queries over them. Write and read paths soft-fail: errors are logged and
// surfaced as false/empty rather than raised, since memory is auxiliary to
// the conversation.
type Manager struct {
	history  history.Store
	index    Index
	embedder Embedder
	config   *Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex // tenant id -> append lock
}

// NewManager creates a Manager. A nil config uses DefaultConfig.
func NewManager(hist history.Store, index Index, embedder Embedder, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig
	}
	return &Manager{
		history:  hist,
		index:    index,
		embedder: embedder,
		config:   config,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Config returns the manager's configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// tenantLock returns the per-tenant mutex serializing the append path.
// Two concurrent turns for the same tenant would otherwise race on the
// durable log; different tenants proceed in parallel.
func (m *Manager) tenantLock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// AddTurn stores one exchange. The durable history store is written first;
// only on success is the turn embedded and upserted into the tenant's
// conversation collection. Any failure returns false, but a turn that
// reached the durable store stays there, since the vector index is a
// rebuildable secondary view.
func (m *Manager) AddTurn(ctx context.Context, sessionID, userMessage, assistantResponse, platform string, meta map[string]any) bool {
	key := tenant.NewKey(platform, sessionID)

	lock := m.tenantLock(key.ID())
	lock.Lock()
	defer lock.Unlock()

	user, err := m.history.GetOrCreateUser(ctx, key.Platform, sessionID)
	if err != nil {
		log.Printf("[MEMORY] Failed to resolve tenant %s:%s: %v", key.Platform, sessionID, err)
		return false
	}

	timestamp := time.Now().Format(time.RFC3339Nano)
	turn := core.Turn{
		Timestamp:         timestamp,
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
	}
	if err := m.history.AppendTurn(ctx, user.ID, turn); err != nil {
		log.Printf("[MEMORY] Durable append failed for session %s, skipping vector write: %v", sessionID, err)
		return false
	}

	combined := fmt.Sprintf("USER: %s\nASSISTANT: %s", userMessage, assistantResponse)
	embedding, err := m.embedder.Embed(ctx, combined)
	if err != nil {
		log.Printf("[MEMORY] Failed to embed turn for session %s: %v", sessionID, err)
		return false
	}

	metadata := map[string]string{
		"type":               "conversation",
		"platform":           key.Platform,
		"session_id":         sessionID,
		"timestamp":          timestamp,
		"user_message":       userMessage,
		"assistant_response": assistantResponse,
	}
	for k, v := range FlattenMetadata(meta) {
		metadata[k] = v
	}

	rec := Record{
		ID:        fmt.Sprintf("%s_%s_%s", key.Platform, sessionID, timestamp),
		Content:   combined,
		Embedding: embedding,
		Metadata:  metadata,
	}
	if err := m.index.Upsert(ctx, key.ConversationCollection(), []Record{rec}); err != nil {
		log.Printf("[MEMORY] Failed to add turn to vector index for session %s: %v", sessionID, err)
		return false
	}

	log.Printf("[MEMORY] Added message pair for session %s", sessionID)
	return true
}

// SemanticSearch returns up to limit turns from the tenant's conversation
// collection ranked by similarity to the query, in the index's own order.
func (m *Manager) SemanticSearch(ctx context.Context, sessionID, query, platform string, limit int) []core.SearchResult {
	key := tenant.NewKey(platform, sessionID)

	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[MEMORY] Failed to embed query for session %s: %v", sessionID, err)
		return nil
	}

	results, err := m.index.Query(ctx, key.ConversationCollection(), embedding, limit,
		map[string]string{"type": "conversation"})
	if err != nil {
		log.Printf("[MEMORY] Semantic search failed for session %s: %v", sessionID, err)
		return nil
	}

	log.Printf("[MEMORY] Semantic search returned %d results for session %s", len(results), sessionID)
	return results
}

// GetRecent returns the most recent limit turns in chronological order.
// An unknown session yields an empty history, not an error.
func (m *Manager) GetRecent(ctx context.Context, sessionID string, limit int) []core.Turn {
	user, err := m.history.FindUser(ctx, sessionID)
	if err != nil {
		log.Printf("[MEMORY] Failed to look up session %s: %v", sessionID, err)
		return nil
	}
	if user == nil {
		log.Printf("[MEMORY] No user found for session %s", sessionID)
		return nil
	}

	turns, err := m.history.GetTurns(ctx, user.ID, limit)
	if err != nil {
		log.Printf("[MEMORY] Failed to get history for session %s: %v", sessionID, err)
		return nil
	}
	return turns
}

// RelevantHistory returns past exchanges semantically relevant to the
// query, formatted for context and sorted by relevance (highest first).
// With crossSession set it searches every conversation collection, not
// just the tenant's own.
func (m *Manager) RelevantHistory(ctx context.Context, sessionID, query, platform string, limit int, crossSession bool) []core.Exchange {
	var results []core.SearchResult
	if crossSession {
		results = m.searchAllConversations(ctx, query, limit)
	} else {
		results = m.SemanticSearch(ctx, sessionID, query, platform, limit)
	}

	formatted := make([]core.Exchange, 0, len(results))
	for _, r := range results {
		if r.Metadata == nil {
			continue
		}
		formatted = append(formatted, core.Exchange{
			User:      r.Metadata["user_message"],
			Assistant: r.Metadata["assistant_response"],
			Timestamp: r.Metadata["timestamp"],
			Relevance: float64(r.Similarity),
		})
	}

	sort.SliceStable(formatted, func(i, j int) bool {
		return formatted[i].Relevance > formatted[j].Relevance
	})
	return formatted
}

// searchAllConversations queries every conversation collection and merges
// the hits into one similarity-ranked list of at most limit items.
func (m *Manager) searchAllConversations(ctx context.Context, query string, limit int) []core.SearchResult {
	embedding, err := m.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("[MEMORY] Failed to embed cross-session query: %v", err)
		return nil
	}

	names, err := m.index.ListCollections(ctx)
	if err != nil {
		log.Printf("[MEMORY] Failed to list collections: %v", err)
		return nil
	}

	var merged []core.SearchResult
	for _, name := range names {
		if !strings.HasPrefix(name, tenant.ConversationPrefix) {
			continue
		}
		results, err := m.index.Query(ctx, name, embedding, limit,
			map[string]string{"type": "conversation"})
		if err != nil {
			log.Printf("[MEMORY] Cross-session query failed for %s: %v", name, err)
			continue
		}
		merged = append(merged, results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ClearHistory removes a tenant's durable turn log and drops both of the
// tenant's vector collections (conversation and documents).
func (m *Manager) ClearHistory(ctx context.Context, sessionID, platform string) bool {
	key := tenant.NewKey(platform, sessionID)

	user, err := m.history.FindUser(ctx, sessionID)
	if err != nil {
		log.Printf("[MEMORY] Failed to look up session %s for clear: %v", sessionID, err)
		return false
	}
	if user != nil {
		if err := m.history.ClearTurns(ctx, user.ID); err != nil {
			log.Printf("[MEMORY] Failed to clear durable history for session %s: %v", sessionID, err)
			return false
		}
	}

	for _, name := range []string{key.ConversationCollection(), key.DocumentCollection()} {
		if err := m.index.DeleteCollection(ctx, name); err != nil {
			log.Printf("[MEMORY] Failed to drop collection %s: %v", name, err)
			return false
		}
	}

	log.Printf("[MEMORY] Cleared history for session %s", sessionID)
	return true
}

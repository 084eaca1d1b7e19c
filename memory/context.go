package memory

import (
	"context"
	"log"

	"github.com/recallhq/recall-go-sdk/core"
)

// BuildOptions controls one context assembly.
type BuildOptions struct {
	// RecentLimit overrides the manager default when > 0.
	RecentLimit int

	// RelevantLimit overrides the manager default when > 0.
	RelevantLimit int

	// CrossSession widens the relevant-history search beyond the current
	// tenant. Off by default: surfacing one tenant's messages to another
	// needs an explicit opt-in at the product level.
	CrossSession bool
}

// ContextBuilder assembles the prompt context for a new message by merging
// recent sequential history with semantically relevant history.
type ContextBuilder struct {
	mgr *Manager
}

// NewContextBuilder creates a ContextBuilder on top of a Manager.
func NewContextBuilder(mgr *Manager) *ContextBuilder {
	return &ContextBuilder{mgr: mgr}
}

// Build fetches the recent window and the relevant set independently,
// drops any relevant item whose user message already appears in the recent
// window, and returns recent-first merged history. Recency is treated as
// more reliable context than a similarity score. A failure on either side
// degrades that side to empty; Build itself never fails.
func (b *ContextBuilder) Build(ctx context.Context, sessionID, currentMessage, platform string, opts BuildOptions) core.ContextBundle {
	recentLimit := opts.RecentLimit
	if recentLimit <= 0 {
		recentLimit = b.mgr.Config().RecentLimit
	}
	relevantLimit := opts.RelevantLimit
	if relevantLimit <= 0 {
		relevantLimit = b.mgr.Config().RelevantLimit
	}

	recent := FormatTurns(b.mgr.GetRecent(ctx, sessionID, recentLimit))
	relevant := b.mgr.RelevantHistory(ctx, sessionID, currentMessage, platform, relevantLimit, opts.CrossSession)

	// Recent and relevant views must not double-count the same exchange.
	seen := make(map[string]struct{}, len(recent))
	for _, ex := range recent {
		seen[ex.User] = struct{}{}
	}

	unique := make([]core.Exchange, 0, len(relevant))
	for _, ex := range relevant {
		if _, dup := seen[ex.User]; dup {
			continue
		}
		unique = append(unique, ex)
	}

	merged := make([]core.Exchange, 0, len(recent)+len(unique))
	merged = append(merged, recent...)
	merged = append(merged, unique...)

	log.Printf("[MEMORY] Built context with %d recent and %d relevant items for session %s",
		len(recent), len(unique), sessionID)

	return core.ContextBundle{
		RecentHistory:   recent,
		RelevantHistory: unique,
		MergedHistory:   merged,
	}
}

// FormatTurns converts durable-store turns into context exchanges.
func FormatTurns(turns []core.Turn) []core.Exchange {
	out := make([]core.Exchange, 0, len(turns))
	for _, t := range turns {
		out = append(out, core.Exchange{
			User:      t.UserMessage,
			Assistant: t.AssistantResponse,
			Timestamp: t.Timestamp,
		})
	}
	return out
}

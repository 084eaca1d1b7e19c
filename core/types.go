// Package core holds the shared value types exchanged between the memory,
// document, and context-assembly layers. It has no dependencies beyond the
// standard library so every other package can import it freely.
package core

// Turn is a single conversational exchange as owned by the durable history
// store: one user message and the assistant's response, never mutated after
// creation.
type Turn struct {
	// Timestamp is an ISO-8601 (RFC 3339) string.
	Timestamp         string `json:"timestamp"`
	UserMessage       string `json:"user_message"`
	AssistantResponse string `json:"assistant_response"`
}

// Exchange is a turn formatted for prompt context. Relevance is only set
// for items that came out of semantic search; recency-sourced items leave
// it zero.
type Exchange struct {
	User      string  `json:"user"`
	Assistant string  `json:"assistant"`
	Timestamp string  `json:"timestamp,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
}

// ContextBundle is the merged context produced for the agent layer.
// MergedHistory is RecentHistory followed by the relevant items that did
// not duplicate a recent one.
type ContextBundle struct {
	RecentHistory   []Exchange `json:"recent_history"`
	RelevantHistory []Exchange `json:"relevant_history"`
	MergedHistory   []Exchange `json:"merged_history"`
}

// SearchResult is one hit from conversation semantic search.
// Similarity is in [0,1] for normalized embeddings, higher = more relevant.
type SearchResult struct {
	ID         string            `json:"id"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// DocumentHit is one hit from document or global-knowledge search.
type DocumentHit struct {
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// KnowledgeSummary describes one logical document in the global knowledge
// base: all chunks sharing the same source, grouped.
type KnowledgeSummary struct {
	Source        string `json:"source"`
	ContentType   string `json:"content_type"`
	AddedDate     string `json:"added_date"`
	ChunkCount    int    `json:"chunk_count"`
	SampleContent string `json:"sample_content"`
}

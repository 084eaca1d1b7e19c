// Package memory stores conversation turns per tenant and retrieves them
// by recency or by semantic similarity.
//
// Each turn is written to the durable history store first (the source of
// truth) and then projected into the tenant's isolated vector collection
// as one combined USER/ASSISTANT record. Retrieval never raises: a memory
// failure degrades to "no context available" so the conversation can
// continue without history.
//
// Architecture:
//   - Index: vector storage backend (chromem-go locally, swappable)
//   - Embedder: text-to-vector conversion (ONNX local model, mock for tests)
//   - Manager: turn writes, recent history, semantic search
//   - ContextBuilder: merges recent and relevant history with dedup
package memory

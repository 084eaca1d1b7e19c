// Package runtime wires the SDK's components together behind a single
// lazily initialized access point. Initialization happens exactly once per
// Runtime; a failed initialization is sticky and every accessor surfaces
// the same error rather than retrying with half-built state.
package runtime

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/recallhq/recall-go-sdk/document"
	"github.com/recallhq/recall-go-sdk/history"
	"github.com/recallhq/recall-go-sdk/history/sqlite"
	"github.com/recallhq/recall-go-sdk/knowledge"
	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/memory/store/chromem"
)

// Option customizes a Runtime before initialization.
type Option func(*Runtime)

// WithEmbedder replaces the default embedder.
func WithEmbedder(e memory.Embedder) Option {
	return func(r *Runtime) { r.embedder = e }
}

// WithIndex replaces the default persistent chromem index.
func WithIndex(idx memory.Index) Option {
	return func(r *Runtime) { r.index = idx }
}

// WithHistory replaces the default SQLite history store.
func WithHistory(h history.Store) Option {
	return func(r *Runtime) { r.history = h }
}

// Runtime owns the managers and the resources behind them. Construct with
// New, then use the accessors; the first accessor call initializes
// everything.
type Runtime struct {
	config *Config

	once    sync.Once
	initErr error

	embedder memory.Embedder
	index    memory.Index
	history  history.Store

	memoryMgr    *memory.Manager
	documentMgr  *document.Manager
	knowledgeMgr *knowledge.Manager
	contextBld   *memory.ContextBuilder
	sweeper      *document.Sweeper

	cached *memory.CachedEmbedder
}

// New creates a Runtime from config. A nil config loads from the
// environment. Nothing is opened until the first accessor call.
func New(config *Config, opts ...Option) *Runtime {
	if config == nil {
		config = LoadConfig()
	}
	r := &Runtime{config: config}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init forces initialization and returns its error. Accessors call this
// implicitly.
func (r *Runtime) Init() error {
	r.once.Do(r.initialize)
	return r.initErr
}

func (r *Runtime) initialize() {
	log.Printf("[RUNTIME] Initializing")

	if r.embedder == nil {
		embedder, err := defaultEmbedder(r.config)
		if err != nil {
			r.initErr = fmt.Errorf("embedder: %w", err)
			return
		}
		r.embedder = embedder
	}

	// Cache first so the concurrency bound only applies to real model
	// calls, then bound what falls through.
	cached, err := memory.NewCachedEmbedder(r.embedder)
	if err != nil {
		r.initErr = fmt.Errorf("embedding cache: %w", err)
		return
	}
	r.cached = cached
	r.embedder = memory.NewBoundedEmbedder(cached, int64(r.config.EmbedConcurrency))

	if r.index == nil {
		if r.config.VectorPath == "" {
			r.index = chromem.NewInMemory(r.embedder.Dimensions())
		} else {
			idx, err := chromem.New(r.config.VectorPath, r.embedder.Dimensions())
			if err != nil {
				r.initErr = fmt.Errorf("vector store: %w", err)
				return
			}
			r.index = idx
		}
	}

	if r.history == nil {
		if dir := filepath.Dir(r.config.HistoryPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				r.initErr = fmt.Errorf("history dir: %w", err)
				return
			}
		}
		store, err := sqlite.New(r.config.HistoryPath)
		if err != nil {
			r.initErr = fmt.Errorf("history store: %w", err)
			return
		}
		r.history = store
	}

	memCfg := &memory.Config{
		RecentLimit:   r.config.RecentLimit,
		RelevantLimit: r.config.RelevantLimit,
	}
	docCfg := &document.Config{
		ChunkSize:        r.config.ChunkSize,
		ChunkOverlap:     r.config.ChunkOverlap,
		DefaultTTLDays:   r.config.DefaultTTLDays,
		EmbedConcurrency: r.config.EmbedConcurrency,
	}

	r.memoryMgr = memory.NewManager(r.history, r.index, r.embedder, memCfg)
	r.documentMgr = document.NewManager(r.index, r.embedder, docCfg)
	r.knowledgeMgr = knowledge.NewManager(r.index, r.embedder, docCfg)
	r.contextBld = memory.NewContextBuilder(r.memoryMgr)
	r.sweeper = document.NewSweeper(r.index)

	// Startup sweep is best effort; expired chunks are also filtered at
	// query time, so a failure here only delays space reclamation.
	removed := r.sweeper.CleanupAll(context.Background())
	log.Printf("[RUNTIME] Startup cleanup removed %d expired chunks", removed)

	log.Printf("[RUNTIME] Ready")
}

// Memory returns the conversation memory manager.
func (r *Runtime) Memory() (*memory.Manager, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.memoryMgr, nil
}

// Documents returns the per-tenant document manager.
func (r *Runtime) Documents() (*document.Manager, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.documentMgr, nil
}

// Knowledge returns the global knowledge base manager.
func (r *Runtime) Knowledge() (*knowledge.Manager, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.knowledgeMgr, nil
}

// Context returns the context assembler.
func (r *Runtime) Context() (*memory.ContextBuilder, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.contextBld, nil
}

// Sweeper returns the expiration sweeper for on-demand cleanup.
func (r *Runtime) Sweeper() (*document.Sweeper, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.sweeper, nil
}

// History returns the durable history store.
func (r *Runtime) History() (history.Store, error) {
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r.history, nil
}

// Close releases the runtime's resources. Safe to call on an uninitialized
// or failed runtime.
func (r *Runtime) Close() error {
	var firstErr error
	if r.history != nil {
		if err := r.history.Close(); err != nil {
			firstErr = err
		}
	}
	if r.cached != nil {
		r.cached.Close()
	}
	return firstErr
}

var (
	defaultMu      sync.Mutex
	defaultRuntime *Runtime
)

// Default returns the process-wide Runtime, creating it from the
// environment on first use.
func Default() *Runtime {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRuntime == nil {
		defaultRuntime = New(nil)
	}
	return defaultRuntime
}

// ResetDefault discards the process-wide Runtime so the next Default call
// builds a fresh one. Intended for tests.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRuntime != nil {
		defaultRuntime.Close()
	}
	defaultRuntime = nil
}

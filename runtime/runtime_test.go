package runtime

import (
	"context"
	"testing"

	"github.com/recallhq/recall-go-sdk/history/memstore"
	"github.com/recallhq/recall-go-sdk/memory"
	"github.com/recallhq/recall-go-sdk/memory/embedder/mock"
	"github.com/recallhq/recall-go-sdk/memory/store/chromem"
)

func newTestRuntime() *Runtime {
	embedder := mock.New()
	return New(&Config{
		ChunkSize:        500,
		ChunkOverlap:     50,
		DefaultTTLDays:   1,
		RecentLimit:      5,
		RelevantLimit:    3,
		EmbedConcurrency: 4,
	},
		WithEmbedder(embedder),
		WithIndex(chromem.NewInMemory(embedder.Dimensions())),
		WithHistory(memstore.New()),
	)
}

func TestLazyInit(t *testing.T) {
	r := newTestRuntime()
	defer r.Close()

	mem, err := r.Memory()
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if mem == nil {
		t.Fatal("Memory returned nil manager")
	}

	// Second accessor reuses the initialized state.
	docs, err := r.Documents()
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if docs == nil {
		t.Fatal("Documents returned nil manager")
	}
}

func TestAllAccessors(t *testing.T) {
	r := newTestRuntime()
	defer r.Close()

	if _, err := r.Knowledge(); err != nil {
		t.Fatalf("Knowledge: %v", err)
	}
	if _, err := r.Context(); err != nil {
		t.Fatalf("Context: %v", err)
	}
	if _, err := r.Sweeper(); err != nil {
		t.Fatalf("Sweeper: %v", err)
	}
	if _, err := r.History(); err != nil {
		t.Fatalf("History: %v", err)
	}
}

func TestInitFailureIsSticky(t *testing.T) {
	// No embedder and no onnx build: initialization must fail, and every
	// accessor must surface the same error instead of retrying.
	r := New(&Config{})
	defer r.Close()

	_, err1 := r.Memory()
	if err1 == nil {
		t.Skip("onnx build provides a default embedder")
	}
	_, err2 := r.Documents()
	if err2 == nil {
		t.Fatal("second accessor should fail too")
	}
	if err1.Error() != err2.Error() {
		t.Errorf("errors differ: %v vs %v", err1, err2)
	}
}

func TestEndToEndThroughRuntime(t *testing.T) {
	ctx := context.Background()
	r := newTestRuntime()
	defer r.Close()

	mem, err := r.Memory()
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if !mem.AddTurn(ctx, "+15551234", "I love hiking in the mountains", "That sounds wonderful!", "whatsapp", nil) {
		t.Fatal("AddTurn returned false")
	}

	builder, err := r.Context()
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	bundle := builder.Build(ctx, "+15551234", "hiking", "whatsapp", memory.BuildOptions{})
	if len(bundle.MergedHistory) == 0 {
		t.Fatal("expected merged history after AddTurn")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RECALL_CHUNK_SIZE", "256")
	t.Setenv("RECALL_RECENT_LIMIT", "7")
	t.Setenv("RECALL_VECTOR_PATH", "/tmp/vectors-test")
	t.Setenv("RECALL_EMBED_CONCURRENCY", "not-a-number")

	cfg := LoadConfig()
	if cfg.ChunkSize != 256 {
		t.Errorf("ChunkSize = %d, want 256", cfg.ChunkSize)
	}
	if cfg.RecentLimit != 7 {
		t.Errorf("RecentLimit = %d, want 7", cfg.RecentLimit)
	}
	if cfg.VectorPath != "/tmp/vectors-test" {
		t.Errorf("VectorPath = %q", cfg.VectorPath)
	}
	// Malformed values fall back to the default.
	if cfg.EmbedConcurrency != 4 {
		t.Errorf("EmbedConcurrency = %d, want 4", cfg.EmbedConcurrency)
	}
}

func TestDefaultSingleton(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	a := Default()
	b := Default()
	if a != b {
		t.Error("Default should return the same runtime")
	}
}

package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/memory/embedder/mock"
	"github.com/recallhq/recall-go-sdk/memory/store/chromem"
	"github.com/recallhq/recall-go-sdk/tenant"
)

func newTestManager() *Manager {
	embedder := mock.New()
	index := chromem.NewInMemory(embedder.Dimensions())
	return NewManager(index, embedder, nil)
}

func TestAddAndSearch(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	ok := mgr.Add(ctx, []byte("The refund policy allows returns within 30 days of purchase."),
		"text/plain", "refund-policy.txt", nil)
	if !ok {
		t.Fatal("Add returned false")
	}
	ok = mgr.Add(ctx, []byte("Shipping takes five business days for domestic orders."),
		"text/plain", "shipping.txt", nil)
	if !ok {
		t.Fatal("Add returned false")
	}

	hits := mgr.Search(ctx, "what is the refund policy", 3)
	if len(hits) == 0 {
		t.Fatal("expected search results")
	}
	if !strings.Contains(hits[0].Content, "refund") {
		t.Errorf("top hit should be the refund chunk, got %q", hits[0].Content)
	}
	if hits[0].Metadata["type"] != "global_knowledge" {
		t.Errorf("type = %q, want global_knowledge", hits[0].Metadata["type"])
	}
	if hits[0].Metadata["source"] != "refund-policy.txt" {
		t.Errorf("source = %q, want refund-policy.txt", hits[0].Metadata["source"])
	}
}

func TestAddRejectsUnsupportedContentType(t *testing.T) {
	mgr := newTestManager()

	if mgr.Add(context.Background(), []byte("data"), "image/png", "logo.png", nil) {
		t.Error("Add should return false for unsupported content type")
	}
}

func TestAddCSV(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	csv := "product,price\nwidget,9.99\ngadget,24.50\n"
	if !mgr.Add(ctx, []byte(csv), "text/csv", "catalog.csv", nil) {
		t.Fatal("Add returned false")
	}

	hits := mgr.Search(ctx, "widget price", 2)
	if len(hits) == 0 {
		t.Fatal("expected search results")
	}
	if hits[0].Metadata["row"] == "" {
		t.Error("CSV chunks should carry a row number")
	}
	if hits[0].Metadata["columns"] != "product,price" {
		t.Errorf("columns = %q, want product,price", hits[0].Metadata["columns"])
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	mgr.Add(ctx, []byte("Alpha document content about onboarding."), "text/plain", "alpha.txt", nil)
	mgr.Add(ctx, []byte("Beta document content about billing."), "text/plain", "beta.txt", nil)

	summaries := mgr.List(ctx)
	if len(summaries) != 2 {
		t.Fatalf("List returned %d summaries, want 2", len(summaries))
	}
	// Sorted by source name.
	if summaries[0].Source != "alpha.txt" || summaries[1].Source != "beta.txt" {
		t.Errorf("unexpected sources: %q, %q", summaries[0].Source, summaries[1].Source)
	}
	if summaries[0].ChunkCount < 1 {
		t.Error("chunk count should be at least 1")
	}
	if summaries[0].ContentType != "text/plain" {
		t.Errorf("content type = %q, want text/plain", summaries[0].ContentType)
	}
	if summaries[0].SampleContent == "" {
		t.Error("sample content should not be empty")
	}
}

func TestListSampleTruncation(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	// Multi-byte content well past the sample cutoff; the sample must be
	// cut between characters, never inside one.
	body := strings.TrimSpace(strings.Repeat("воспоминания хранятся вечно ", 40))
	if !mgr.Add(ctx, []byte(body), "text/plain", "notes.txt", nil) {
		t.Fatal("Add returned false")
	}

	summaries := mgr.List(ctx)
	if len(summaries) != 1 {
		t.Fatalf("List returned %d summaries, want 1", len(summaries))
	}
	sample := summaries[0].SampleContent
	if !utf8.ValidString(sample) {
		t.Fatalf("sample is not valid UTF-8: %q", sample)
	}
	if !strings.HasSuffix(sample, "...") {
		t.Errorf("long content should yield a truncated sample, got %q", sample)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(sample, "...")); n > sampleContentLength {
		t.Errorf("sample has %d runes, want <= %d", n, sampleContentLength)
	}
}

func TestDeleteDocumentRequiresConfirmation(t *testing.T) {
	mgr := newTestManager()

	_, err := mgr.DeleteDocument(context.Background(), "alpha.txt", false)
	if !errors.Is(err, core.ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	mgr.Add(ctx, []byte("Alpha content."), "text/plain", "alpha.txt", nil)
	mgr.Add(ctx, []byte("Beta content."), "text/plain", "beta.txt", nil)

	removed, err := mgr.DeleteDocument(ctx, "alpha.txt", true)
	if err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if removed < 1 {
		t.Fatalf("removed = %d, want at least 1", removed)
	}

	summaries := mgr.List(ctx)
	if len(summaries) != 1 || summaries[0].Source != "beta.txt" {
		t.Errorf("only beta.txt should remain, got %+v", summaries)
	}

	// Deleting an unknown document is not an error.
	removed, err = mgr.DeleteDocument(ctx, "missing.txt", true)
	if err != nil {
		t.Fatalf("DeleteDocument missing: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	mgr.Add(ctx, []byte("Alpha content."), "text/plain", "alpha.txt", nil)
	mgr.Add(ctx, []byte("Beta content."), "text/plain", "beta.txt", nil)

	if _, err := mgr.Clear(ctx, false); !errors.Is(err, core.ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}

	removed, err := mgr.Clear(ctx, true)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed < 2 {
		t.Fatalf("removed = %d, want at least 2", removed)
	}

	if got := mgr.List(ctx); len(got) != 0 {
		t.Errorf("knowledge base should be empty, got %d documents", len(got))
	}

	// Clearing an empty base succeeds with zero removed.
	removed, err = mgr.Clear(ctx, true)
	if err != nil {
		t.Fatalf("Clear empty: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestKnowledgeCollectionName(t *testing.T) {
	if tenant.KnowledgeCollection != "global_knowledge_base" {
		t.Errorf("KnowledgeCollection = %q", tenant.KnowledgeCollection)
	}
}

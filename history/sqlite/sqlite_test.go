package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/recallhq/recall-go-sdk/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetOrCreateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u1, err := s.GetOrCreateUser(ctx, "whatsapp", "+15551234")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	if u1.ID == "" {
		t.Fatal("user id is empty")
	}
	if u1.PlatformIDs["whatsapp_id"] != "+15551234" {
		t.Errorf("whatsapp_id = %q", u1.PlatformIDs["whatsapp_id"])
	}

	// Same identity resolves to the same user.
	u2, err := s.GetOrCreateUser(ctx, "whatsapp", "+15551234")
	if err != nil {
		t.Fatalf("GetOrCreateUser again: %v", err)
	}
	if u2.ID != u1.ID {
		t.Errorf("resolved ids differ: %s vs %s", u1.ID, u2.ID)
	}

	// Same external id on another platform is a different user.
	u3, err := s.GetOrCreateUser(ctx, "telegram", "+15551234")
	if err != nil {
		t.Fatalf("GetOrCreateUser telegram: %v", err)
	}
	if u3.ID == u1.ID {
		t.Error("telegram identity collided with whatsapp identity")
	}
}

func TestFindUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.GetOrCreateUser(ctx, "website", "jane@example.com")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	found, err := s.FindUser(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindUser = %+v, want id %s", found, created.ID)
	}

	missing, err := s.FindUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindUser missing: %v", err)
	}
	if missing != nil {
		t.Errorf("unknown id resolved to %+v", missing)
	}
}

func TestUnknownPlatformUsesAPIField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.GetOrCreateUser(ctx, "carrier-pigeon", "key-123")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}
	if u.PlatformIDs["api_id"] != "key-123" {
		t.Errorf("api_id = %q, want key-123", u.PlatformIDs["api_id"])
	}
}

func TestTurnLog(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.GetOrCreateUser(ctx, "whatsapp", "+15551234")
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	for i, msg := range []string{"first", "second", "third"} {
		turn := core.Turn{
			Timestamp:         fmt.Sprintf("2026-08-%02dT12:00:00Z", i+1),
			UserMessage:       msg,
			AssistantResponse: "re: " + msg,
		}
		if err := s.AppendTurn(ctx, u.ID, turn); err != nil {
			t.Fatalf("AppendTurn: %v", err)
		}
	}

	turns, err := s.GetTurns(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("GetTurns: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	if turns[0].UserMessage != "first" || turns[2].UserMessage != "third" {
		t.Errorf("turns out of order: %v", turns)
	}

	// Limit keeps the newest turns.
	turns, err = s.GetTurns(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("GetTurns limited: %v", err)
	}
	if len(turns) != 2 || turns[0].UserMessage != "second" {
		t.Errorf("limited turns = %v", turns)
	}

	// A non-positive limit returns the entire log.
	turns, err = s.GetTurns(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("GetTurns unlimited: %v", err)
	}
	if len(turns) != 3 {
		t.Errorf("GetTurns(0) returned %d turns, want 3", len(turns))
	}

	if err := s.ClearTurns(ctx, u.ID); err != nil {
		t.Fatalf("ClearTurns: %v", err)
	}
	turns, err = s.GetTurns(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("GetTurns after clear: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("turns survived clear: %v", turns)
	}
}

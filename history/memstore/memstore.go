// Package memstore implements history.Store in process memory. It backs
// tests and ephemeral deployments where durability is not required, and
// exposes a write-failure hook so callers can exercise degraded paths.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/history"
)

// Store is an in-memory history.Store.
type Store struct {
	mu    sync.RWMutex
	users map[string]*history.User // user id -> record
	turns map[string][]core.Turn   // user id -> ordered log

	// FailAppends makes every AppendTurn return an error. Tests use it to
	// verify the vector index never gains a turn the durable store lost.
	FailAppends bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]*history.User),
		turns: make(map[string][]core.Turn),
	}
}

func (s *Store) GetOrCreateUser(ctx context.Context, platform, externalID string) (*history.User, error) {
	field := history.FieldForPlatform(platform)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.PlatformIDs[field] == externalID {
			return u, nil
		}
	}

	u := &history.User{
		ID:          uuid.NewString(),
		PlatformIDs: map[string]string{field: externalID},
		CreatedAt:   time.Now(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) FindUser(ctx context.Context, externalID string) (*history.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, field := range history.PlatformFields {
		for _, u := range s.users {
			if u.PlatformIDs[field] == externalID {
				return u, nil
			}
		}
	}
	return nil, nil
}

func (s *Store) AppendTurn(ctx context.Context, userID string, turn core.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppends {
		return errors.New("append disabled")
	}
	if _, ok := s.users[userID]; !ok {
		return errors.New("unknown user")
	}
	s.turns[userID] = append(s.turns[userID], turn)
	return nil
}

func (s *Store) GetTurns(ctx context.Context, userID string, limit int) ([]core.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.turns[userID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]core.Turn, len(log))
	copy(out, log)
	return out, nil
}

func (s *Store) ClearTurns(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, userID)
	return nil
}

func (s *Store) Close() error {
	return nil
}

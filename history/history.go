// Package history defines the durable conversation record store: the
// system of record for raw message pairs, keyed by a stable internal user
// identity resolved from (platform, external id).
//
// The vector index is a secondary, rebuildable view; this store is the
// source of truth. Implementations: sqlite (persistent) and memstore
// (in-memory, used by tests).
package history

import (
	"context"
	"time"

	"github.com/recallhq/recall-go-sdk/core"
)

// PlatformFields lists the identifying columns a user record may carry,
// in the order resolution tries them. Any one of these may hold the match
// for a given external id.
var PlatformFields = []string{"whatsapp_id", "telegram_id", "website_id", "api_id"}

// FieldForPlatform maps a platform name to its identifying field.
// Unknown platforms fall back to api_id.
func FieldForPlatform(platform string) string {
	switch platform {
	case "whatsapp", "telegram", "website", "api":
		return platform + "_id"
	default:
		return "api_id"
	}
}

// User is a durable user record. Exactly one platform id field is set at
// creation; later platforms may attach more.
type User struct {
	ID          string
	PlatformIDs map[string]string // field name -> external id
	Name        string
	Email       string
	Phone       string
	CreatedAt   time.Time
}

// Store is the durable history abstraction consumed by the memory layer.
//
// GetOrCreateUser resolves (platform, externalID) to a stable user,
// creating the record if absent: the same pair always resolves to the same
// user, and ids are never reused. FindUser tries every platform field in
// PlatformFields order and returns (nil, nil) when no field matches.
//
// AppendTurn appends to the user's ordered turn log; GetTurns returns the
// most recent limit turns in chronological order, or the entire log when
// limit <= 0. ClearTurns removes the user's entire log.
//
// Store errors propagate as-is; retry policy belongs to the caller.
type Store interface {
	GetOrCreateUser(ctx context.Context, platform, externalID string) (*User, error)
	FindUser(ctx context.Context, externalID string) (*User, error)
	AppendTurn(ctx context.Context, userID string, turn core.Turn) error
	GetTurns(ctx context.Context, userID string, limit int) ([]core.Turn, error)
	ClearTurns(ctx context.Context, userID string) error
	Close() error
}

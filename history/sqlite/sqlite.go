// Package sqlite implements history.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/recallhq/recall-go-sdk/core"
	"github.com/recallhq/recall-go-sdk/history"
)

// Store is a SQLite-backed history.Store. Users carry one column per
// platform identifying field; turns are append-only, one row per exchange.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dataSourceName and initializes
// the schema.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        whatsapp_id TEXT,
        telegram_id TEXT,
        website_id TEXT,
        api_id TEXT,
        name TEXT,
        email TEXT,
        phone TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_users_whatsapp ON users (whatsapp_id);
    CREATE INDEX IF NOT EXISTS idx_users_telegram ON users (telegram_id);
    CREATE INDEX IF NOT EXISTS idx_users_website ON users (website_id);
    CREATE INDEX IF NOT EXISTS idx_users_api ON users (api_id);

    CREATE TABLE IF NOT EXISTS turns (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        user_message TEXT NOT NULL,
        assistant_response TEXT NOT NULL,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );
    CREATE INDEX IF NOT EXISTS idx_turns_user ON turns (user_id, id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// GetOrCreateUser resolves (platform, externalID), creating the user record
// keyed by the platform's identifying field if no field matches.
func (s *Store) GetOrCreateUser(ctx context.Context, platform, externalID string) (*history.User, error) {
	field := history.FieldForPlatform(platform)

	user, err := s.userByField(ctx, field, externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	id := uuid.NewString()
	now := time.Now()
	query := fmt.Sprintf("INSERT INTO users (id, %s, created_at) VALUES (?, ?, ?)", field)
	if _, err := s.db.ExecContext(ctx, query, id, externalID, now); err != nil {
		return nil, fmt.Errorf("%w: insert user: %v", core.ErrTenantResolution, err)
	}
	return &history.User{
		ID:          id,
		PlatformIDs: map[string]string{field: externalID},
		CreatedAt:   now,
	}, nil
}

// FindUser tries each platform identifying field in order and returns the
// first match, or (nil, nil) when the external id is unknown.
func (s *Store) FindUser(ctx context.Context, externalID string) (*history.User, error) {
	for _, field := range history.PlatformFields {
		user, err := s.userByField(ctx, field, externalID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

func (s *Store) userByField(ctx context.Context, field, externalID string) (*history.User, error) {
	// field comes from history.PlatformFields, never from caller input.
	query := fmt.Sprintf(`SELECT id, whatsapp_id, telegram_id, website_id, api_id,
        name, email, phone, created_at FROM users WHERE %s = ?`, field)

	var (
		u                  history.User
		wa, tg, web, api   sql.NullString
		name, email, phone sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, externalID).Scan(
		&u.ID, &wa, &tg, &web, &api, &name, &email, &phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query user by %s: %v", core.ErrTenantResolution, field, err)
	}

	u.PlatformIDs = make(map[string]string)
	for f, v := range map[string]sql.NullString{
		"whatsapp_id": wa, "telegram_id": tg, "website_id": web, "api_id": api,
	} {
		if v.Valid && v.String != "" {
			u.PlatformIDs[f] = v.String
		}
	}
	u.Name, u.Email, u.Phone = name.String, email.String, phone.String
	return &u, nil
}

// AppendTurn appends one exchange to the user's turn log.
func (s *Store) AppendTurn(ctx context.Context, userID string, turn core.Turn) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO turns (user_id, timestamp, user_message, assistant_response) VALUES (?, ?, ?, ?)",
		userID, turn.Timestamp, turn.UserMessage, turn.AssistantResponse)
	if err != nil {
		return fmt.Errorf("%w: insert turn: %v", core.ErrStorageWrite, err)
	}
	return nil
}

// GetTurns returns the most recent limit turns in chronological order.
// A limit <= 0 returns the entire log.
func (s *Store) GetTurns(ctx context.Context, userID string, limit int) ([]core.Turn, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT timestamp, user_message, assistant_response
        FROM turns
        WHERE user_id = ?
        ORDER BY id DESC
        LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.Turn
	for rows.Next() {
		var t core.Turn
		if err := rows.Scan(&t.Timestamp, &t.UserMessage, &t.AssistantResponse); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Rows arrive newest-first; callers expect chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// ClearTurns removes the user's entire turn log.
func (s *Store) ClearTurns(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM turns WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements SessionStore using SQLite.
// It uses the pure Go modernc.org/sqlite driver.
type SQLiteStore struct {
	db      *sql.DB
	profile string
}

// NewSQLite creates a new SQLite session store for the given profile.
// The database file is created if it doesn't exist.
func NewSQLite(dbPath, profile string) (*SQLiteStore, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// WAL lets the CLI and a running dashboard server read concurrently
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to enable WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, profile: profile}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS auth_sessions (
		profile    TEXT PRIMARY KEY,
		token      TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		user_json  TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: failed to create schema: %w", err)
	}
	return nil
}

// Save persists the session in a single upsert.
func (s *SQLiteStore) Save(ctx context.Context, session *Session) error {
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO auth_sessions (profile, token, expires_at, user_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.profile,
		session.Token,
		session.ExpiresAt.UTC(),
		string(session.User),
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: failed to save session: %w", err)
	}
	return nil
}

// Load returns the session for this store's profile.
func (s *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	var (
		session Session
		user    string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT token, expires_at, user_json, created_at FROM auth_sessions WHERE profile = ?",
		s.profile,
	).Scan(&session.Token, &session.ExpiresAt, &user, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to load session: %w", err)
	}

	session.User = []byte(user)
	return &session, nil
}

// Clear deletes the session row for this profile.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE profile = ?", s.profile); err != nil {
		return fmt.Errorf("sqlite: failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

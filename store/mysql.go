package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore implements SessionStore using MySQL.
type MySQLStore struct {
	db      *sql.DB
	profile string
}

// NewMySQL creates a new MySQL session store on an open connection pool.
func NewMySQL(db *sql.DB, profile string) (*MySQLStore, error) {
	if profile == "" {
		profile = DefaultProfile
	}

	if err := createMySQLSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &MySQLStore{db: db, profile: profile}, nil
}

// NewMySQLFromDSN creates a new MySQL session store from a DSN.
// The DSN format is: user:password@tcp(host:port)/database[?params]
func NewMySQLFromDSN(dsn, profile string) (*MySQLStore, error) {
	cfg, err := mysqlConfig(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: failed to connect: %w", err)
	}

	return NewMySQL(db, profile)
}

// mysqlConfig parses dsn and turns on parseTime, keeping any existing params.
func mysqlConfig(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: invalid dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg, nil
}

func createMySQLSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS auth_sessions (
		profile    VARCHAR(128) PRIMARY KEY,
		token      TEXT NOT NULL,
		expires_at TIMESTAMP(3) NOT NULL,
		user_json  JSON NOT NULL,
		created_at TIMESTAMP(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("mysql: failed to create schema: %w", err)
	}
	return nil
}

// Save persists the session in a single REPLACE statement.
func (s *MySQLStore) Save(ctx context.Context, session *Session) error {
	createdAt := session.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`REPLACE INTO auth_sessions (profile, token, expires_at, user_json, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.profile,
		session.Token,
		session.ExpiresAt.UTC(),
		string(session.User),
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("mysql: failed to save session: %w", err)
	}
	return nil
}

// Load returns the session for this store's profile.
func (s *MySQLStore) Load(ctx context.Context) (*Session, error) {
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
		return nil, fmt.Errorf("mysql: failed to load session: %w", err)
	}

	session.User = []byte(user)
	return &session, nil
}

// Clear deletes the session row for this profile.
func (s *MySQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE profile = ?", s.profile); err != nil {
		return fmt.Errorf("mysql: failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

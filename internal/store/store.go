// Package store persists catalog session tokens between processes.
//
// The browse cache itself is deliberately not persisted; only the session
// token survives a restart so the credential cascade can short-circuit.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	access_token  TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMP NOT NULL
);
`

// SessionStore is a single-row sqlite store for the catalog session token
// and an optional refresh token.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates the store and its schema.
func NewSessionStore(db *sql.DB) (*SessionStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create sessions schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Load returns the persisted access and refresh tokens; both empty when no
// session was ever saved.
func (s *SessionStore) Load(ctx context.Context) (string, string, error) {
	var accessToken, refreshToken string

	err := s.db.QueryRowContext(
		ctx, "SELECT access_token, refresh_token FROM sessions WHERE id = 1",
	).Scan(&accessToken, &refreshToken)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}

	return accessToken, refreshToken, nil
}

// Save upserts the access token, keeping any stored refresh token.
func (s *SessionStore) Save(ctx context.Context, accessToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, access_token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET access_token = excluded.access_token, updated_at = excluded.updated_at
	`, accessToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SaveRefreshToken upserts the refresh token, keeping any stored access
// token.
func (s *SessionStore) SaveRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, refresh_token, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET refresh_token = excluded.refresh_token, updated_at = excluded.updated_at
	`, refreshToken, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// Clear drops the stored session entirely.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

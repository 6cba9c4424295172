package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Fixed keys of the persisted session state.
const (
	KeyAuthToken     = "authToken"
	KeyCurrentUser   = "currentUser"
	KeyRememberEmail = "login-name"
)

var ErrKeyNotFound = errors.New("session key not found")

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM session_state WHERE key = ?`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session key %q: %w", key, err)
	}
	return value, nil
}

func (r *SessionRepository) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO session_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set session key %q: %w", key, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM session_state WHERE key = ?`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete session key %q: %w", key, err)
	}
	return nil
}

// Token implements board.TokenSource. A missing token yields an empty
// string; the backend answers 401 and the caller is sent to login.
func (r *SessionRepository) Token(ctx context.Context) (string, error) {
	token, err := r.Get(ctx, KeyAuthToken)
	if errors.Is(err, ErrKeyNotFound) {
		return "", nil
	}
	return token, err
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/attendbot/attend-admin/internal/web/middleware"
)

// SessionRepository provides PostgreSQL-backed session storage.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Save stores a session, replacing any previous row with the same id.
func (r *SessionRepository) Save(ctx context.Context, s *middleware.Session) error {
	query := `
		INSERT INTO sessions (id, token, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`
	if _, err := r.pool.db.ExecContext(ctx, query, s.ID, s.Token, s.CreatedAt, s.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session by id. A missing session returns (nil, nil).
func (r *SessionRepository) Get(ctx context.Context, id string) (*middleware.Session, error) {
	query := `SELECT id, token, created_at, expires_at FROM sessions WHERE id = $1`

	var s middleware.Session
	err := r.pool.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Token, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteByToken removes every session carrying the given backend token.
func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete sessions by token: %w", err)
	}
	return nil
}

// DeleteExpired clears out sessions whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	if _, err := r.pool.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

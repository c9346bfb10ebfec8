package postgres

import (
	"context"
	"fmt"
	"time"
)

// RevokeSession adds the session id to the revocation set and prunes
// entries whose tokens have expired anyway.
func (s *Store) RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error {
	const insert = `
		INSERT INTO revoked_sessions (session_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING`
	const prune = `DELETE FROM revoked_sessions WHERE expires_at < NOW()`

	if _, err := s.pool.Exec(ctx, insert, sessionID, expiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if _, err := s.pool.Exec(ctx, prune); err != nil {
		return fmt.Errorf("prune revoked sessions: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether the session id is in the revocation set.
func (s *Store) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE session_id = $1 AND expires_at > NOW())`
	var revoked bool
	if err := s.pool.QueryRow(ctx, query, sessionID).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return revoked, nil
}

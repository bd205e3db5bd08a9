package store

import (
	"context"
	"fmt"
	"time"

	"github.com/thelogbook/logbook/internal/auth"
)

func (s *Store) CreateSession(ctx context.Context, sess *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO auth_sessions (token, member_id, org_id, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		sess.Token, sess.MemberID, sess.OrgID, sess.CreatedAt.Unix(), sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess auth.Session
	var created, expires int64
	err := s.db.QueryRowContext(ctx,
		"SELECT token, member_id, org_id, created_at, expires_at FROM auth_sessions WHERE token = ?",
		token,
	).Scan(&sess.Token, &sess.MemberID, &sess.OrgID, &created, &expires)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	sess.CreatedAt = time.Unix(created, 0).UTC()
	sess.ExpiresAt = time.Unix(expires, 0).UTC()
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE expires_at < ?", before.Unix()); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

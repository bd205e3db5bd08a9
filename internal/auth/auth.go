// Package auth manages cookie-backed sessions for the intranet. There
// is no password flow here; sessions are issued after the deployment's
// own identity check (SSO settings are stored during onboarding but
// exchanged elsewhere).
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

// CookieName carries the session token.
const CookieName = "logbook_session"

// DefaultTTL is how long an issued session stays valid.
const DefaultTTL = 12 * time.Hour

// Session is one authenticated browser session.
type Session struct {
	Token     string    `json:"-"`
	MemberID  string    `json:"member_id"`
	OrgID     string    `json:"org_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its deadline.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) error
}

// Manager issues and resolves sessions.
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session manager. ttl <= 0 selects DefaultTTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Issue creates a session for a member and returns it with its token.
func (m *Manager) Issue(ctx context.Context, memberID, orgID string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "generate session token").Build()
	}
	now := time.Now().UTC()
	sess := &Session{
		Token:     token,
		MemberID:  memberID,
		OrgID:     orgID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create session").Build()
	}
	return sess, nil
}

// Resolve validates a token. Expired sessions are removed and rejected.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errors.AuthError("missing session token").Build()
	}
	sess, err := m.store.GetSession(ctx, token)
	if err != nil {
		return nil, errors.AuthError("invalid session token").Build()
	}
	if sess.Expired(time.Now().UTC()) {
		_ = m.store.DeleteSession(ctx, token)
		return nil, errors.AuthError("session expired").Build()
	}
	return sess, nil
}

// Revoke deletes a session; unknown tokens are not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return errors.WrapError(err, errors.CategoryDatabase, "delete session").Build()
	}
	return nil
}

// Sweep removes expired sessions. The Sweeper runs this periodically.
func (m *Manager) Sweep(ctx context.Context) error {
	return m.store.DeleteExpiredSessions(ctx, time.Now().UTC())
}

// Cookie builds the session cookie for a response.
func Cookie(sess *Session) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest resolves the session cookie on a request.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, errors.AuthError("not signed in").Build()
	}
	return m.Resolve(r.Context(), c.Value)
}

// Authorize is a boolean view of FromRequest for the stream hub.
func (m *Manager) Authorize(r *http.Request) bool {
	_, err := m.FromRequest(r)
	return err == nil
}

type ctxKey struct{}

// SessionFrom returns the session placed in ctx by Middleware.
func SessionFrom(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok
}

// Middleware rejects unauthenticated requests with the classified-error
// status mapping and stores the session in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.FromRequest(r)
		if err != nil {
			http.Error(w, `{"success":false,"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

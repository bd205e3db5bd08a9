// Package store is the SQLite persistence layer. One Store instance
// backs every domain service; each service only sees the narrow
// interface it declares.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thelogbook/logbook/internal/auth"
	"github.com/thelogbook/logbook/internal/events"
	"github.com/thelogbook/logbook/internal/inventory"
	"github.com/thelogbook/logbook/internal/members"
	"github.com/thelogbook/logbook/internal/minutes"
	"github.com/thelogbook/logbook/internal/onboarding"
)

// Store implements every domain store interface over one SQLite file.
// Use ":memory:" for an in-memory database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the database and its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS onboarding_sessions (
		id TEXT PRIMARY KEY,
		step TEXT NOT NULL,
		org_name TEXT NOT NULL DEFAULT '',
		org_type TEXT NOT NULL DEFAULT '',
		modules TEXT,
		integrations TEXT,
		admin_name TEXT NOT NULL DEFAULT '',
		admin_email TEXT NOT NULL DEFAULT '',
		org_id TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS org_modules (
		org_id TEXT NOT NULL,
		module TEXT NOT NULL,
		enabled INTEGER NOT NULL,
		PRIMARY KEY (org_id, module)
	);
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		search_key TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE (org_id, email)
	);
	CREATE INDEX IF NOT EXISTS idx_members_org ON members(org_id);
	CREATE INDEX IF NOT EXISTS idx_members_search ON members(org_id, search_key);
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		starts_at INTEGER NOT NULL,
		ends_at INTEGER NOT NULL,
		reminder_sent INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_org_start ON events(org_id, starts_at);
	CREATE TABLE IF NOT EXISTS rsvps (
		event_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		status TEXT NOT NULL,
		responded_at INTEGER NOT NULL,
		PRIMARY KEY (event_id, member_id)
	);
	CREATE TABLE IF NOT EXISTS inventory_items (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		condition TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_org ON inventory_items(org_id);
	CREATE TABLE IF NOT EXISTS minutes (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		title TEXT NOT NULL,
		meeting_date INTEGER NOT NULL,
		body TEXT NOT NULL,
		state TEXT NOT NULL,
		approved_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_minutes_org ON minutes(org_id, meeting_date);
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		org_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		payload BLOB,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_audit_org ON audit_events(org_id, id);
	CREATE TABLE IF NOT EXISTS auth_sessions (
		token TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		org_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_expiry ON auth_sessions(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// PingContext satisfies the health checker's database probe.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- organizations ---

func (s *Store) CreateOrganization(ctx context.Context, org *onboarding.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO organizations (id, name, type, created_at) VALUES (?, ?, ?, ?)",
		org.ID, org.Name, org.Type, org.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*onboarding.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var org onboarding.Organization
	var created int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, type, created_at FROM organizations WHERE id = ?", id,
	).Scan(&org.ID, &org.Name, &org.Type, &created)
	if err != nil {
		return nil, fmt.Errorf("query organization: %w", err)
	}
	org.CreatedAt = time.Unix(created, 0).UTC()
	return &org, nil
}

// --- onboarding sessions ---

func (s *Store) SaveOnboarding(ctx context.Context, sess *onboarding.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	modulesJSON, err := json.Marshal(sess.Modules)
	if err != nil {
		return fmt.Errorf("marshal modules: %w", err)
	}
	integrationsJSON, err := json.Marshal(sess.Integrations)
	if err != nil {
		return fmt.Errorf("marshal integrations: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO onboarding_sessions
			(id, step, org_name, org_type, modules, integrations, admin_name, admin_email, org_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			step = excluded.step,
			org_name = excluded.org_name,
			org_type = excluded.org_type,
			modules = excluded.modules,
			integrations = excluded.integrations,
			admin_name = excluded.admin_name,
			admin_email = excluded.admin_email,
			org_id = excluded.org_id,
			updated_at = excluded.updated_at`,
		sess.ID, string(sess.Step), sess.OrgName, sess.OrgType,
		string(modulesJSON), string(integrationsJSON),
		sess.AdminName, sess.AdminEmail, sess.OrgID,
		sess.CreatedAt.Unix(), sess.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save onboarding session: %w", err)
	}
	return nil
}

func (s *Store) GetOnboarding(ctx context.Context, id string) (*onboarding.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess onboarding.Session
	var step, modulesJSON, integrationsJSON string
	var created, updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, step, org_name, org_type, modules, integrations, admin_name, admin_email, org_id, created_at, updated_at
		FROM onboarding_sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &step, &sess.OrgName, &sess.OrgType, &modulesJSON, &integrationsJSON,
		&sess.AdminName, &sess.AdminEmail, &sess.OrgID, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("query onboarding session: %w", err)
	}
	sess.Step = onboarding.Step(step)
	if modulesJSON != "" {
		if err := json.Unmarshal([]byte(modulesJSON), &sess.Modules); err != nil {
			return nil, fmt.Errorf("unmarshal modules: %w", err)
		}
	}
	if integrationsJSON != "" {
		if err := json.Unmarshal([]byte(integrationsJSON), &sess.Integrations); err != nil {
			return nil, fmt.Errorf("unmarshal integrations: %w", err)
		}
	}
	sess.CreatedAt = time.Unix(created, 0).UTC()
	sess.UpdatedAt = time.Unix(updated, 0).UTC()
	return &sess, nil
}

// --- module toggles ---

func (s *Store) SetOrgModule(ctx context.Context, orgID, module string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO org_modules (org_id, module, enabled) VALUES (?, ?, ?)
		ON CONFLICT (org_id, module) DO UPDATE SET enabled = excluded.enabled`,
		orgID, module, boolToInt(enabled),
	)
	if err != nil {
		return fmt.Errorf("set module toggle: %w", err)
	}
	return nil
}

// OrgModules returns the persisted module toggles for one organization.
func (s *Store) OrgModules(ctx context.Context, orgID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT module, enabled FROM org_modules WHERE org_id = ?", orgID)
	if err != nil {
		return nil, fmt.Errorf("query module toggles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var module string
		var enabled int
		if err := rows.Scan(&module, &enabled); err != nil {
			return nil, fmt.Errorf("scan module toggle: %w", err)
		}
		out[module] = enabled != 0
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ onboarding.Store = (*Store)(nil)
var _ members.Store = (*Store)(nil)
var _ events.Store = (*Store)(nil)
var _ inventory.Store = (*Store)(nil)
var _ inventory.Auditor = (*Store)(nil)
var _ minutes.Store = (*Store)(nil)
var _ auth.Store = (*Store)(nil)

// requireRow turns a zero-row UPDATE into sql.ErrNoRows so callers can
// treat missing entities uniformly.
func requireRow(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", entity, sql.ErrNoRows)
	}
	return nil
}

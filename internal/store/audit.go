package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// AuditEntry is one row of the append-only mutation trail.
type AuditEntry struct {
	ID         int64           `json:"id"`
	OrgID      string          `json:"org_id"`
	ActorID    string          `json:"actor_id"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// AppendAudit records a mutation. The trail is append-only; there is no
// update or delete path.
func (s *Store) AppendAudit(ctx context.Context, orgID, actorID, entityType, entityID, action string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (org_id, actor_id, entity_type, entity_id, action, payload, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		orgID, actorID, entityType, entityID, action, payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListAudit returns the most recent entries for an organization, newest
// first. limit <= 0 selects a default page of 100.
func (s *Store) ListAudit(ctx context.Context, orgID string, limit int) ([]*AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, actor_id, entity_type, entity_id, action, payload, timestamp
		FROM audit_events WHERE org_id = ? ORDER BY id DESC LIMIT ?`,
		orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts int64
		if err := rows.Scan(&e.ID, &e.OrgID, &e.ActorID, &e.EntityType, &e.EntityID, &e.Action, &e.Payload, &ts); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Timestamp = time.Unix(ts, 0).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

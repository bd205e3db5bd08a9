package store

import (
	"context"
	"fmt"
	"time"

	"github.com/thelogbook/logbook/internal/minutes"
)

const minutesColumns = "id, org_id, title, meeting_date, body, state, approved_by, created_at, updated_at"

func (s *Store) CreateMinutes(ctx context.Context, m *minutes.Minutes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO minutes ("+minutesColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.OrgID, m.Title, m.MeetingDate.Unix(), m.Body, string(m.State),
		m.ApprovedBy, m.CreatedAt.Unix(), m.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert minutes: %w", err)
	}
	return nil
}

func (s *Store) GetMinutes(ctx context.Context, id string) (*minutes.Minutes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+minutesColumns+" FROM minutes WHERE id = ?", id)
	return scanMinutes(row)
}

func (s *Store) ListMinutes(ctx context.Context, orgID string) ([]*minutes.Minutes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+minutesColumns+" FROM minutes WHERE org_id = ? ORDER BY meeting_date DESC", orgID)
	if err != nil {
		return nil, fmt.Errorf("query minutes: %w", err)
	}
	defer rows.Close()

	var out []*minutes.Minutes
	for rows.Next() {
		m, err := scanMinutes(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMinutes(ctx context.Context, m *minutes.Minutes) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE minutes SET title = ?, meeting_date = ?, body = ?, state = ?, approved_by = ?, updated_at = ?
		WHERE id = ?`,
		m.Title, m.MeetingDate.Unix(), m.Body, string(m.State), m.ApprovedBy,
		m.UpdatedAt.Unix(), m.ID,
	)
	if err != nil {
		return fmt.Errorf("update minutes: %w", err)
	}
	return requireRow(res, "minutes")
}

func scanMinutes(row rowScanner) (*minutes.Minutes, error) {
	var m minutes.Minutes
	var state string
	var meeting, created, updated int64
	err := row.Scan(&m.ID, &m.OrgID, &m.Title, &meeting, &m.Body, &state,
		&m.ApprovedBy, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("scan minutes: %w", err)
	}
	m.State = minutes.State(state)
	m.MeetingDate = time.Unix(meeting, 0).UTC()
	m.CreatedAt = time.Unix(created, 0).UTC()
	m.UpdatedAt = time.Unix(updated, 0).UTC()
	return &m, nil
}

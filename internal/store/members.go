package store

import (
	"context"
	"fmt"
	"time"

	"github.com/thelogbook/logbook/internal/members"
)

const memberColumns = "id, org_id, name, email, role, status, search_key, created_at, updated_at"

func (s *Store) CreateMember(ctx context.Context, m *members.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members ("+memberColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.OrgID, m.Name, m.Email, m.Role, string(m.Status), m.SearchKey,
		m.CreatedAt.Unix(), m.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *Store) GetMember(ctx context.Context, id string) (*members.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	return scanMember(row)
}

func (s *Store) GetMemberByEmail(ctx context.Context, orgID, email string) (*members.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE org_id = ? AND email = ?", orgID, email)
	return scanMember(row)
}

func (s *Store) ListMembers(ctx context.Context, orgID string) ([]*members.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE org_id = ? ORDER BY search_key", orgID)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []*members.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMember(ctx context.Context, m *members.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET name = ?, email = ?, role = ?, status = ?, search_key = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Email, m.Role, string(m.Status), m.SearchKey, m.UpdatedAt.Unix(), m.ID,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(res, "member")
}

func (s *Store) DeleteMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*members.Member, error) {
	var m members.Member
	var status string
	var created, updated int64
	err := row.Scan(&m.ID, &m.OrgID, &m.Name, &m.Email, &m.Role, &status, &m.SearchKey, &created, &updated)
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	m.Status = members.Status(status)
	m.CreatedAt = time.Unix(created, 0).UTC()
	m.UpdatedAt = time.Unix(updated, 0).UTC()
	return &m, nil
}

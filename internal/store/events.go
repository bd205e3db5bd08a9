package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thelogbook/logbook/internal/events"
)

const eventColumns = "id, org_id, title, description, location, starts_at, ends_at, reminder_sent, created_at"

func (s *Store) CreateEvent(ctx context.Context, e *events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.OrgID, e.Title, e.Description, e.Location,
		e.StartsAt.Unix(), e.EndsAt.Unix(), boolToInt(e.ReminderSent), e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	return scanEvent(row)
}

func (s *Store) ListEvents(ctx context.Context, orgID string, from time.Time) ([]*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE org_id = ? AND ends_at >= ? ORDER BY starts_at",
		orgID, from.Unix())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *Store) UpdateEvent(ctx context.Context, e *events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, location = ?, starts_at = ?, ends_at = ?, reminder_sent = ?
		WHERE id = ?`,
		e.Title, e.Description, e.Location, e.StartsAt.Unix(), e.EndsAt.Unix(),
		boolToInt(e.ReminderSent), e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireRow(res, "event")
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM rsvps WHERE event_id = ?", id); err != nil {
		return fmt.Errorf("delete event rsvps: %w", err)
	}
	return nil
}

func (s *Store) UpsertRSVP(ctx context.Context, r *events.RSVP) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rsvps (event_id, member_id, status, responded_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id, member_id) DO UPDATE SET
			status = excluded.status,
			responded_at = excluded.responded_at`,
		r.EventID, r.MemberID, string(r.Status), r.RespondedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert rsvp: %w", err)
	}
	return nil
}

func (s *Store) ListRSVPs(ctx context.Context, eventID string) ([]*events.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT event_id, member_id, status, responded_at FROM rsvps WHERE event_id = ? ORDER BY responded_at",
		eventID)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}
	defer rows.Close()

	var out []*events.RSVP
	for rows.Next() {
		var r events.RSVP
		var status string
		var responded int64
		if err := rows.Scan(&r.EventID, &r.MemberID, &status, &responded); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		r.Status = events.RSVPStatus(status)
		r.RespondedAt = time.Unix(responded, 0).UTC()
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) EventsNeedingReminder(ctx context.Context, before time.Time) ([]*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE reminder_sent = 0 AND starts_at <= ? AND starts_at >= ? ORDER BY starts_at",
		before.Unix(), time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("query events needing reminder: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *Store) MarkReminderSent(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE events SET reminder_sent = 1 WHERE id = ?", eventID)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return requireRow(res, "event")
}

func scanEvent(row rowScanner) (*events.Event, error) {
	var e events.Event
	var starts, ends, created int64
	var reminder int
	err := row.Scan(&e.ID, &e.OrgID, &e.Title, &e.Description, &e.Location,
		&starts, &ends, &reminder, &created)
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	e.StartsAt = time.Unix(starts, 0).UTC()
	e.EndsAt = time.Unix(ends, 0).UTC()
	e.ReminderSent = reminder != 0
	e.CreatedAt = time.Unix(created, 0).UTC()
	return &e, nil
}

func collectEvents(rows *sql.Rows) ([]*events.Event, error) {
	var out []*events.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

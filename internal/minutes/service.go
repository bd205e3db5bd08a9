package minutes

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateMinutes(ctx context.Context, m *Minutes) error
	GetMinutes(ctx context.Context, id string) (*Minutes, error)
	ListMinutes(ctx context.Context, orgID string) ([]*Minutes, error)
	UpdateMinutes(ctx context.Context, m *Minutes) error
}

// Service provides minutes operations.
type Service struct {
	store   Store
	archive Archiver
}

// NewService creates a minutes service. archive may be nil when the
// archive is disabled in configuration.
func NewService(store Store, archive Archiver) *Service {
	return &Service{store: store, archive: archive}
}

// Create drafts new minutes.
func (s *Service) Create(ctx context.Context, orgID, title, body string, meetingDate time.Time) (*Minutes, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.ValidationError("minutes title is required").Build()
	}
	if meetingDate.IsZero() {
		return nil, errors.ValidationError("meeting date is required").Build()
	}

	now := time.Now().UTC()
	m := &Minutes{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Title:       title,
		MeetingDate: meetingDate.UTC(),
		Body:        body,
		State:       StateDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateMinutes(ctx, m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create minutes").Build()
	}
	return m, nil
}

// Get fetches one minutes document.
func (s *Service) Get(ctx context.Context, id string) (*Minutes, error) {
	m, err := s.store.GetMinutes(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("minutes not found").WithContext("minutes_id", id).Build()
	}
	return m, nil
}

// GetRendered fetches one document together with its rendered HTML body.
func (s *Service) GetRendered(ctx context.Context, id string) (*Minutes, string, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	htmlBody, err := RenderHTML(m.Body)
	if err != nil {
		return nil, "", errors.WrapError(err, errors.CategoryInternal, "render minutes").Build()
	}
	return m, htmlBody, nil
}

// List returns all minutes for one organization.
func (s *Service) List(ctx context.Context, orgID string) ([]*Minutes, error) {
	out, err := s.store.ListMinutes(ctx, orgID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "list minutes").Build()
	}
	return out, nil
}

// UpdateBody edits a draft. Approved minutes are immutable.
func (s *Service) UpdateBody(ctx context.Context, id, title, body string) (*Minutes, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State == StateApproved {
		return nil, errors.ConflictError("approved minutes cannot be edited").Build()
	}
	if title != "" {
		m.Title = strings.TrimSpace(title)
	}
	m.Body = body
	m.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateMinutes(ctx, m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "update minutes").Build()
	}
	return m, nil
}

// Approve finalizes a draft and archives it. Approval is idempotent.
func (s *Service) Approve(ctx context.Context, id, approverID string) (*Minutes, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.State == StateApproved {
		return m, nil
	}
	m.State = StateApproved
	m.ApprovedBy = approverID
	m.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateMinutes(ctx, m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "approve minutes").Build()
	}
	if s.archive != nil {
		if err := s.archive.ArchiveApproved(m); err != nil {
			// Approval stands; the archive catches up on the next approval
			// or by an operator re-running it.
			slog.Warn("Minutes archive failed", "minutes_id", m.ID, "error", err)
		}
	}
	return m, nil
}

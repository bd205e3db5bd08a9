package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateEvent(ctx context.Context, e *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, orgID string, from time.Time) ([]*Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, id string) error
	UpsertRSVP(ctx context.Context, r *RSVP) error
	ListRSVPs(ctx context.Context, eventID string) ([]*RSVP, error)
	EventsNeedingReminder(ctx context.Context, before time.Time) ([]*Event, error)
	MarkReminderSent(ctx context.Context, eventID string) error
}

// Service provides event scheduling operations.
type Service struct {
	store Store
}

// NewService creates an event service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and persists a new event.
func (s *Service) Create(ctx context.Context, orgID, title, description, location string, startsAt, endsAt time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.ValidationError("event title is required").Build()
	}
	if startsAt.IsZero() {
		return nil, errors.ValidationError("event start time is required").Build()
	}
	if !endsAt.IsZero() && endsAt.Before(startsAt) {
		return nil, errors.ValidationError("event cannot end before it starts").Build()
	}

	e := &Event{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Title:       title,
		Description: description,
		Location:    location,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "create event").Build()
	}
	return e, nil
}

// Get fetches one event.
func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("event not found").WithContext("event_id", id).Build()
	}
	return e, nil
}

// Upcoming lists events starting at or after from.
func (s *Service) Upcoming(ctx context.Context, orgID string, from time.Time) ([]*Event, error) {
	out, err := s.store.ListEvents(ctx, orgID, from.UTC())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "list events").Build()
	}
	return out, nil
}

// Delete removes an event and its responses.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return errors.WrapError(err, errors.CategoryDatabase, "delete event").Build()
	}
	return nil
}

// Respond records or replaces a member's RSVP.
func (s *Service) Respond(ctx context.Context, eventID, memberID string, status RSVPStatus) (*RSVP, error) {
	switch status {
	case RSVPGoing, RSVPNotGoing, RSVPMaybe:
	default:
		return nil, errors.ValidationError("rsvp status must be going, not_going or maybe").
			WithContext("status", string(status)).Build()
	}
	if _, err := s.Get(ctx, eventID); err != nil {
		return nil, err
	}

	r := &RSVP{
		EventID:     eventID,
		MemberID:    memberID,
		Status:      status,
		RespondedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertRSVP(ctx, r); err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "record rsvp").Build()
	}
	return r, nil
}

// Responses lists all RSVPs for one event.
func (s *Service) Responses(ctx context.Context, eventID string) ([]*RSVP, error) {
	out, err := s.store.ListRSVPs(ctx, eventID)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryDatabase, "list rsvps").Build()
	}
	return out, nil
}

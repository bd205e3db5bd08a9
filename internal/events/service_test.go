package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thelogbook/logbook/internal/foundation/errors"
)

type memStore struct {
	events map[string]*Event
	rsvps  map[string]*RSVP // key eventID/memberID
}

func newMemStore() *memStore {
	return &memStore{events: map[string]*Event{}, rsvps: map[string]*RSVP{}}
}

func (s *memStore) CreateEvent(_ context.Context, e *Event) error {
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) GetEvent(_ context.Context, id string) (*Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("no row")
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) ListEvents(_ context.Context, orgID string, from time.Time) ([]*Event, error) {
	var out []*Event
	for _, e := range s.events {
		if e.OrgID == orgID && !e.StartsAt.Before(from) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) UpdateEvent(_ context.Context, e *Event) error {
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *memStore) DeleteEvent(_ context.Context, id string) error {
	delete(s.events, id)
	return nil
}

func (s *memStore) UpsertRSVP(_ context.Context, r *RSVP) error {
	cp := *r
	s.rsvps[r.EventID+"/"+r.MemberID] = &cp
	return nil
}

func (s *memStore) ListRSVPs(_ context.Context, eventID string) ([]*RSVP, error) {
	var out []*RSVP
	for _, r := range s.rsvps {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) EventsNeedingReminder(_ context.Context, before time.Time) ([]*Event, error) {
	var out []*Event
	for _, e := range s.events {
		if !e.ReminderSent && e.StartsAt.Before(before) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) MarkReminderSent(_ context.Context, eventID string) error {
	e, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("no row")
	}
	e.ReminderSent = true
	return nil
}

type recordingNotifier struct {
	notified []string
	fail     bool
}

func (n *recordingNotifier) NotifyEventReminder(_ context.Context, e *Event) error {
	if n.fail {
		return fmt.Errorf("smtp down")
	}
	n.notified = append(n.notified, e.ID)
	return nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemStore())
	start := time.Now().Add(time.Hour)

	_, err := svc.Create(context.Background(), "org-1", "  ", "", "", start, time.Time{})
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = svc.Create(context.Background(), "org-1", "Drill night", "", "", start, start.Add(-time.Hour))
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	e, err := svc.Create(context.Background(), "org-1", "Drill night", "ladder ops", "Station 1", start, start.Add(2*time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.ReminderSent)
}

func TestRespondReplacesEarlierAnswer(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	e, err := svc.Create(context.Background(), "org-1", "Pancake breakfast", "", "", time.Now().Add(48*time.Hour), time.Time{})
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), e.ID, "m-1", RSVPMaybe)
	require.NoError(t, err)
	_, err = svc.Respond(context.Background(), e.ID, "m-1", RSVPGoing)
	require.NoError(t, err)

	responses, err := svc.Responses(context.Background(), e.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, RSVPGoing, responses[0].Status)
}

func TestRespondRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemStore())
	e, err := svc.Create(context.Background(), "org-1", "Drill", "", "", time.Now().Add(time.Hour), time.Time{})
	require.NoError(t, err)

	_, err = svc.Respond(context.Background(), e.ID, "m-1", RSVPStatus("attending"))
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestRespondUnknownEvent(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Respond(context.Background(), "nope", "m-1", RSVPGoing)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestSweepSendsEachReminderOnce(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	soon, err := svc.Create(context.Background(), "org-1", "Drill", "", "", time.Now().Add(time.Hour), time.Time{})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "org-1", "Banquet", "", "", time.Now().Add(30*24*time.Hour), time.Time{})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	sweeper, err := NewReminderSweeper(store, notifier, time.Minute)
	require.NoError(t, err)
	defer func() { _ = sweeper.Stop() }()

	sweeper.Sweep(context.Background())
	require.Equal(t, []string{soon.ID}, notifier.notified)

	// Second pass: already marked, nothing new goes out.
	sweeper.Sweep(context.Background())
	assert.Len(t, notifier.notified, 1)
}

func TestSweepRetriesAfterNotifierFailure(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	_, err := svc.Create(context.Background(), "org-1", "Drill", "", "", time.Now().Add(time.Hour), time.Time{})
	require.NoError(t, err)

	notifier := &recordingNotifier{fail: true}
	sweeper, err := NewReminderSweeper(store, notifier, time.Minute)
	require.NoError(t, err)
	defer func() { _ = sweeper.Stop() }()

	sweeper.Sweep(context.Background())
	assert.Empty(t, notifier.notified)

	notifier.fail = false
	sweeper.Sweep(context.Background())
	assert.Len(t, notifier.notified, 1)
}

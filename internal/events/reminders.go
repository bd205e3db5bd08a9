package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ReminderWindow is how far ahead the sweep looks for events whose
// reminder has not gone out yet.
const ReminderWindow = 24 * time.Hour

// Notifier delivers an event reminder. The server wires this to the
// change bus; tests use a recording fake.
type Notifier interface {
	NotifyEventReminder(ctx context.Context, e *Event) error
}

// ReminderSweeper periodically finds events starting soon and fires one
// reminder each through the notifier.
type ReminderSweeper struct {
	store     Store
	notifier  Notifier
	scheduler gocron.Scheduler
	interval  time.Duration
}

// NewReminderSweeper creates a sweeper running at the given interval.
func NewReminderSweeper(store Store, notifier Notifier, interval time.Duration) (*ReminderSweeper, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReminderSweeper{store: store, notifier: notifier, scheduler: sched, interval: interval}, nil
}

// Start registers the sweep job and begins the scheduler.
func (rs *ReminderSweeper) Start(ctx context.Context) error {
	_, err := rs.scheduler.NewJob(
		gocron.DurationJob(rs.interval),
		gocron.NewTask(func() { rs.Sweep(ctx) }),
		gocron.WithName("event-reminder-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	rs.scheduler.Start()
	slog.Info("Reminder sweep started", "interval", rs.interval)
	return nil
}

// Stop shuts the scheduler down.
func (rs *ReminderSweeper) Stop() error {
	return rs.scheduler.Shutdown()
}

// Sweep runs one pass: every event starting within ReminderWindow whose
// reminder is still pending gets exactly one notification. A notifier
// failure leaves the event pending for the next pass.
func (rs *ReminderSweeper) Sweep(ctx context.Context) {
	due, err := rs.store.EventsNeedingReminder(ctx, time.Now().UTC().Add(ReminderWindow))
	if err != nil {
		slog.Error("Reminder sweep query failed", "error", err)
		return
	}
	for _, e := range due {
		if err := rs.notifier.NotifyEventReminder(ctx, e); err != nil {
			slog.Warn("Reminder delivery failed, will retry next sweep", "event_id", e.ID, "error", err)
			continue
		}
		if err := rs.store.MarkReminderSent(ctx, e.ID); err != nil {
			slog.Error("Failed to mark reminder sent", "event_id", e.ID, "error", err)
			continue
		}
		slog.Info("Event reminder sent", "event_id", e.ID, "title", e.Title)
	}
}

// LogNotifier records reminders in the log. Mail delivery goes through
// the department's configured provider, which this service stores but
// never calls itself.
type LogNotifier struct{}

func (LogNotifier) NotifyEventReminder(_ context.Context, e *Event) error {
	slog.Info("Event reminder due", "event_id", e.ID, "title", e.Title, "starts_at", e.StartsAt)
	return nil
}

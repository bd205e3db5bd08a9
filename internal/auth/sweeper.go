package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically deletes expired sessions so abandoned logins do
// not pile up in storage. Expiry on the resolve path only removes a
// session when its own token comes back.
type Sweeper struct {
	manager   *Manager
	scheduler gocron.Scheduler
	interval  time.Duration
}

// NewSweeper creates a sweeper running at the given interval.
func NewSweeper(manager *Manager, interval time.Duration) (*Sweeper, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{manager: manager, scheduler: sched, interval: interval}, nil
}

// Start registers the sweep job and begins the scheduler.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if err := s.manager.Sweep(ctx); err != nil {
				slog.Error("Session sweep failed", "error", err)
			}
		}),
		gocron.WithName("session-sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}
	s.scheduler.Start()
	slog.Info("Session sweep started", "interval", s.interval)
	return nil
}

// Stop shuts the scheduler down.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a full LoadAll on a cron schedule, so the engine converges
// with the store even when file events are missed.
type Scheduler struct {
	manager  *Manager
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a resync scheduler using the manager's
// ResyncSchedule.
func NewScheduler(m *Manager) *Scheduler {
	return &Scheduler{
		manager:  m,
		schedule: m.config.ResyncSchedule,
		cron:     cron.New(),
		logger:   m.logger.With("component", "manager.scheduler"),
	}
}

// Start begins scheduled resyncs.
//
// Common cron expressions:
//   - "*/5 * * * *"  - Every 5 minutes
//   - "0 * * * *"    - Hourly
//   - "@every 30s"   - Every 30 seconds
//
// If the schedule is empty, the scheduler does nothing. The scheduler stops
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("resync schedule not configured, skipping scheduler")
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runResync(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule resync: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("resync scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runResync executes one resync cycle.
func (s *Scheduler) runResync(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("starting scheduled resync")

	report, err := s.manager.LoadAll(ctx)
	if report == nil {
		s.logger.Error("scheduled resync failed", "error", err)
		return
	}
	if err != nil {
		s.logger.Warn("scheduled resync completed with failures",
			"failed", len(report.Failed),
			"error", err,
		)
		return
	}

	s.logger.Debug("scheduled resync completed",
		"loaded", len(report.Loaded),
		"evicted", len(report.Evicted),
	)
}

// Stop stops the scheduler and waits for a running resync to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.logger.Info("resync scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled resync time, or nil when the
// scheduler is not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if !s.running || len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}

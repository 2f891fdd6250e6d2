package bench

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs measurement suites on a cron schedule.
type Scheduler struct {
	runner   *Runner
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for the given cron expression.
func NewScheduler(runner *Runner, schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "bench.scheduler"),
	}
}

// Start begins scheduled suite runs. An empty schedule disables the
// scheduler without error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("bench schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSuite(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule bench suite: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("bench scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSuite executes one full-catalog suite.
func (s *Scheduler) runSuite(ctx context.Context) {
	s.logger.Info("starting scheduled bench suite")

	run, err := s.runner.RunSuite(ctx, nil)
	if err != nil {
		s.logger.Error("scheduled bench suite failed", "error", err)
		return
	}

	s.logger.Info("scheduled bench suite completed",
		"run_id", run.ID,
		"samples", len(run.Samples),
	)
}

// Stop stops the scheduler and waits for a running suite to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("bench scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

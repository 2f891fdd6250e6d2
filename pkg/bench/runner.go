package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lanekit/shaperd/pkg/config"
	"lanekit/shaperd/pkg/shaping"
)

// Runner executes measurement suites against the shaping controller.
type Runner struct {
	controller *shaping.Controller
	driver     Driver
	store      *Store
	cfg        config.BenchConfig
	logger     *slog.Logger
}

// NewRunner creates a suite runner. store may be nil to skip persistence.
func NewRunner(controller *shaping.Controller, driver Driver, store *Store, cfg config.BenchConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		controller: controller,
		driver:     driver,
		store:      store,
		cfg:        cfg,
		logger:     logger.With("component", "bench.runner"),
	}
}

// RunSuite measures every named policy in order. A failed drive records
// the sample with its error and moves on; a failed apply does the same.
// Shaping is cleared after each policy regardless of outcome so a failed
// sample never leaks its policy into the next one.
func (r *Runner) RunSuite(ctx context.Context, policies []string) (*Run, error) {
	if len(policies) == 0 {
		policies = r.controller.Catalog().List()
	}
	iface := r.controller.Interface(r.cfg.Interface)

	run := &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	r.logger.Info("suite started",
		"run_id", run.ID,
		"policies", len(policies),
		"iface", iface,
	)

	for i, name := range policies {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("suite interrupted: %w", err)
		}
		if i > 0 {
			sleepCtx(ctx, r.cfg.WaitBetween)
		}

		sample := r.measure(ctx, name, iface)
		run.Samples = append(run.Samples, sample)
	}

	run.CompletedAt = time.Now().UTC()

	if r.store != nil {
		if err := r.store.SaveRun(ctx, run); err != nil {
			return run, fmt.Errorf("failed to persist run %s: %w", run.ID, err)
		}
	}

	r.logger.Info("suite completed",
		"run_id", run.ID,
		"samples", len(run.Samples),
	)
	return run, nil
}

// measure runs one apply/settle/drive/clear cycle.
func (r *Runner) measure(ctx context.Context, name, iface string) Sample {
	sample := Sample{
		ID:        uuid.NewString(),
		Policy:    name,
		Interface: iface,
		StartedAt: time.Now().UTC(),
	}

	if _, err := r.controller.ApplyPolicy(ctx, name, iface); err != nil {
		sample.Error = fmt.Sprintf("apply failed: %v", err)
		r.logger.Warn("sample skipped", "policy", name, "error", err)
		return sample
	}

	sleepCtx(ctx, r.cfg.SettleDelay)

	m, err := r.driver.Drive(ctx, r.cfg.Duration)
	if err != nil {
		sample.Error = fmt.Sprintf("drive failed: %v", err)
		r.logger.Warn("drive failed", "policy", name, "error", err)
	} else {
		sample.Bytes = m.Bytes
		sample.Duration = m.Elapsed
		sample.ThroughputBps = m.ThroughputBps()
		r.logger.Info("sample recorded",
			"policy", name,
			"bytes", m.Bytes,
			"throughput_bps", m.ThroughputBps(),
		)
	}

	if err := r.controller.ClearShaping(ctx, iface); err != nil {
		r.logger.Error("failed to clear shaping after sample", "policy", name, "error", err)
		if sample.Error == "" {
			sample.Error = fmt.Sprintf("clear failed: %v", err)
		}
	}

	return sample
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

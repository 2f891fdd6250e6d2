package shaping

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lanekit/shaperd/pkg/tc"
)

// DefaultCommandTimeout bounds each individual scheduler call.
const DefaultCommandTimeout = 5 * time.Second

// Executor applies compiled operation sequences to live kernel scheduler
// state. Each underlying call is bounded by a per-call timeout; a call that
// exceeds it fails that operation.
type Executor struct {
	runner  tc.Runner
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor creates an executor over the given scheduler runner.
// A non-positive timeout falls back to DefaultCommandTimeout.
func NewExecutor(runner tc.Runner, timeout time.Duration, logger *slog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		runner:  runner,
		timeout: timeout,
		logger:  logger.With("component", "shaping.executor"),
	}
}

// Apply clears the interface root and then executes ops in order, stopping
// at the first failure. It returns the number of operations executed. On
// failure the interface keeps the partial state the successful prefix
// produced; callers that need a clean slate must Clear and retry.
func (e *Executor) Apply(ctx context.Context, iface string, ops []Operation) (int, error) {
	if err := e.Clear(ctx, iface); err != nil {
		return 0, err
	}

	for i, op := range ops {
		if err := e.runOp(ctx, op); err != nil {
			e.logger.Error("operation failed",
				"iface", iface,
				"operation", op.String(),
				"position", i+1,
				"total", len(ops),
				"error", err,
			)
			return i, &ApplyError{Op: op, Position: i, Total: len(ops), Cause: err}
		}
	}

	e.logger.Info("operations applied", "iface", iface, "count", len(ops))
	return len(ops), nil
}

// Clear removes any existing root qdisc on iface. An absent root is not an
// error; anything else surfaces as a ClearError.
func (e *Executor) Clear(ctx context.Context, iface string) error {
	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.runner.DelRoot(opCtx, iface)
	if err == nil || tc.IsNoRoot(err) {
		return nil
	}
	return &ClearError{Iface: iface, Cause: err}
}

func (e *Executor) runOp(ctx context.Context, op Operation) error {
	opCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	switch op.Kind {
	case OpAddRootQdisc:
		return e.runner.AddQdisc(opCtx, op.Iface, "", op.Handle, op.Spec)
	case OpAddLeafQdisc:
		return e.runner.AddQdisc(opCtx, op.Iface, op.Parent, op.Handle, op.Spec)
	case OpAddClass:
		return e.runner.AddClass(opCtx, op.Iface, op.Parent, op.Handle, op.Spec)
	default:
		return fmt.Errorf("unknown operation kind: %q", op.Kind)
	}
}

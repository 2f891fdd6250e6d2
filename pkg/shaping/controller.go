package shaping

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"lanekit/shaperd/pkg/policy"
	"lanekit/shaperd/pkg/tc"
)

// ControllerConfig configures the shaping controller.
type ControllerConfig struct {
	// DefaultInterface is used when a request names no interface.
	DefaultInterface string

	// CommandTimeout bounds each scheduler call.
	CommandTimeout time.Duration
}

// ApplyResult reports a successful policy application.
type ApplyResult struct {
	Policy     string `json:"policy"`
	Interface  string `json:"interface"`
	Operations int    `json:"operations"`
}

// Controller orchestrates catalog resolution, compilation, execution, and
// the active-policy records. Mutations are serialized per interface;
// catalog swaps are atomic so in-flight requests keep the catalog they
// resolved against.
type Controller struct {
	catalog  atomic.Pointer[policy.Catalog]
	runner   tc.Runner
	executor *Executor
	store    *Store
	defIface string
	logger   *slog.Logger
}

// NewController creates a controller over a loaded catalog.
func NewController(cat *policy.Catalog, runner tc.Runner, cfg ControllerConfig, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		runner:   runner,
		executor: NewExecutor(runner, cfg.CommandTimeout, logger),
		store:    NewStore(),
		defIface: cfg.DefaultInterface,
		logger:   logger.With("component", "shaping.controller"),
	}
	c.catalog.Store(cat)
	return c
}

// Catalog returns the current catalog.
func (c *Controller) Catalog() *policy.Catalog {
	return c.catalog.Load()
}

// SwapCatalog replaces the catalog wholesale. Already-applied policies are
// unaffected; only future resolution uses the new catalog.
func (c *Controller) SwapCatalog(cat *policy.Catalog) {
	c.catalog.Store(cat)
	c.logger.Info("catalog swapped", "policies", cat.Len())
}

// Interface resolves an empty interface name to the configured default.
func (c *Controller) Interface(iface string) string {
	if iface == "" {
		return c.defIface
	}
	return iface
}

// ApplyPolicy resolves name, compiles it, and applies it to iface.
//
// Resolution and compilation failures happen before any kernel mutation
// and leave the active record untouched. Once the executor has started,
// any failure resets the record to inactive: the pre-apply clear has
// already run, so the previous policy is no longer trustworthy, and the
// failed policy is never recorded as active.
func (c *Controller) ApplyPolicy(ctx context.Context, name, iface string) (ApplyResult, error) {
	iface = c.Interface(iface)

	desc, err := c.catalog.Load().Resolve(name)
	if err != nil {
		return ApplyResult{}, err
	}
	ops, err := Compile(desc, iface)
	if err != nil {
		return ApplyResult{}, err
	}

	unlock := c.store.lockInterface(iface)
	defer unlock()

	count, err := c.executor.Apply(ctx, iface, ops)
	if err != nil {
		c.store.RecordCleared(iface)
		return ApplyResult{}, err
	}

	c.store.RecordApplied(iface, name, desc)
	c.logger.Info("policy applied",
		"policy", name,
		"iface", iface,
		"operations", count,
	)
	return ApplyResult{Policy: name, Interface: iface, Operations: count}, nil
}

// ClearShaping removes shaping from iface and resets its record. A failed
// clear leaves the record unchanged and surfaces a ClearError.
func (c *Controller) ClearShaping(ctx context.Context, iface string) error {
	iface = c.Interface(iface)

	unlock := c.store.lockInterface(iface)
	defer unlock()

	if err := c.executor.Clear(ctx, iface); err != nil {
		return err
	}
	c.store.RecordCleared(iface)
	c.logger.Info("shaping cleared", "iface", iface)
	return nil
}

// Current returns the active-policy record for iface.
func (c *Controller) Current(iface string) Record {
	return c.store.Current(c.Interface(iface))
}

// ShowQdisc returns the scheduler's own qdisc listing for iface, with
// statistics when stats is true.
func (c *Controller) ShowQdisc(ctx context.Context, iface string, stats bool) (string, error) {
	return c.runner.Show(ctx, c.Interface(iface), stats)
}

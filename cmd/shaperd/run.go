package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lanekit/shaperd/pkg/bench"
	"lanekit/shaperd/pkg/config"
	"lanekit/shaperd/pkg/netboot"
	"lanekit/shaperd/pkg/policy"
	"lanekit/shaperd/pkg/server"
	"lanekit/shaperd/pkg/shaping"
	"lanekit/shaperd/pkg/tc"
	"lanekit/shaperd/pkg/telemetry/logging"
	"lanekit/shaperd/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	iface         string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the shaping controller",
	Long: `Start the shaping controller with the specified configuration.

The controller loads the policy catalog, optionally bootstraps IP
forwarding and NAT for the shaped path, and serves the HTTP API.

Examples:
  # Start with default config
  shaperd run

  # Start with custom config
  shaperd run --config /etc/shaperd/config.yaml

  # Override listen address
  shaperd run --listen 0.0.0.0:8080

  # Validate config and catalog without starting
  shaperd run --dry-run`,
	RunE: runController,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVarP(&runFlags.iface, "interface", "i", "", "override default interface")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and catalog without starting")
}

func runController(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if runFlags.iface != "" {
		cfg.Shaping.DefaultInterface = runFlags.iface
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Logging, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	catalog, err := policy.Load(cfg.Shaping.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load policy catalog: %w", err)
	}

	if runFlags.dryRun {
		fmt.Printf("✓ Configuration valid\n")
		fmt.Printf("✓ Policy catalog valid (%d policies)\n", catalog.Len())
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-time forwarding/NAT setup for the shaped path
	if cfg.Shaping.Bootstrap {
		bootCfg := netboot.Config{
			WANInterface: cfg.Shaping.WANInterface,
			LANInterface: cfg.Shaping.LANInterface,
		}
		if err := netboot.Bootstrap(ctx, netboot.ExecCommander{}, bootCfg, logger); err != nil {
			return fmt.Errorf("network bootstrap failed: %w", err)
		}
		fmt.Println("✓ Forwarding and NAT configured")
	}

	runner := tc.NewExecRunner(logger)
	controller := shaping.NewController(catalog, runner, shaping.ControllerConfig{
		DefaultInterface: cfg.Shaping.DefaultInterface,
		CommandTimeout:   cfg.Shaping.CommandTimeout,
	}, logger)
	fmt.Printf("✓ Policy catalog loaded (%d policies)\n", catalog.Len())

	// Hot reload of the catalog file
	if cfg.Shaping.WatchCatalog {
		watcher := policy.NewWatcher(policy.WatcherConfig{Path: cfg.Shaping.CatalogPath}, logger)
		go func() {
			if err := watcher.Watch(ctx, controller.SwapCatalog); err != nil && ctx.Err() == nil {
				slog.Error("catalog watcher stopped", "error", err)
			}
		}()
		fmt.Println("✓ Catalog watcher started")
	}

	var m *metrics.ShapingMetrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace)
		fmt.Println("✓ Metrics enabled")
	}

	// Scheduled measurement suites
	if cfg.Bench.Enabled {
		store, err := bench.NewStore(cfg.Bench.DBPath, logger)
		if err != nil {
			return fmt.Errorf("failed to open bench store: %w", err)
		}
		defer store.Close()

		driver := bench.NewHTTPDriver(cfg.Bench.TargetURL, nil)
		benchRunner := bench.NewRunner(controller, driver, store, cfg.Bench, logger)
		scheduler := bench.NewScheduler(benchRunner, cfg.Bench.Schedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start bench scheduler: %w", err)
		}
		defer scheduler.Stop()
		fmt.Println("✓ Bench harness initialized")
	}

	srv := server.NewServer(&cfg.Server, controller, m)
	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress)
	return srv.Start(ctx)
}

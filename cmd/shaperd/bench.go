package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lanekit/shaperd/pkg/bench"
	"lanekit/shaperd/pkg/config"
	"lanekit/shaperd/pkg/policy"
	"lanekit/shaperd/pkg/shaping"
	"lanekit/shaperd/pkg/tc"
	"lanekit/shaperd/pkg/telemetry/logging"
)

var benchFlags struct {
	target   string
	iface    string
	policies []string
	out      string
	noStore  bool
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a one-off measurement suite",
	Long: `Run one measurement suite: apply each policy, drive traffic through
the shaped interface, record the observed goodput, and clear shaping.

The suite covers the whole catalog unless --policy narrows it. Results
persist in the configured SQLite store and can additionally be exported
as CSV.

Examples:
  # Measure every catalog policy
  shaperd bench --target http://192.168.1.10/payload.bin

  # Measure two policies and export CSV
  shaperd bench --target http://192.168.1.10/payload.bin \
    --policy slow_link --policy lossy --out results.csv`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVarP(&benchFlags.target, "target", "t", "", "override download target URL")
	benchCmd.Flags().StringVarP(&benchFlags.iface, "interface", "i", "", "override bench interface")
	benchCmd.Flags().StringArrayVarP(&benchFlags.policies, "policy", "p", nil, "policy to measure (repeatable; default: whole catalog)")
	benchCmd.Flags().StringVarP(&benchFlags.out, "out", "o", "", "write results as CSV to this file")
	benchCmd.Flags().BoolVar(&benchFlags.noStore, "no-store", false, "skip persisting results to the database")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if benchFlags.target != "" {
		cfg.Bench.TargetURL = benchFlags.target
	}
	if benchFlags.iface != "" {
		cfg.Bench.Interface = benchFlags.iface
	}
	if cfg.Bench.TargetURL == "" {
		return fmt.Errorf("no bench target configured; set bench.target_url or pass --target")
	}

	logger, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	catalog, err := policy.Load(cfg.Shaping.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load policy catalog: %w", err)
	}

	runner := tc.NewExecRunner(logger)
	controller := shaping.NewController(catalog, runner, shaping.ControllerConfig{
		DefaultInterface: cfg.Shaping.DefaultInterface,
		CommandTimeout:   cfg.Shaping.CommandTimeout,
	}, logger)

	var store *bench.Store
	if !benchFlags.noStore {
		store, err = bench.NewStore(cfg.Bench.DBPath, logger)
		if err != nil {
			return fmt.Errorf("failed to open bench store: %w", err)
		}
		defer store.Close()
	}

	driver := bench.NewHTTPDriver(cfg.Bench.TargetURL, nil)
	suite := bench.NewRunner(controller, driver, store, cfg.Bench, logger)

	run, err := suite.RunSuite(context.Background(), benchFlags.policies)
	if err != nil {
		return fmt.Errorf("bench suite failed: %w", err)
	}

	fmt.Printf("✓ Suite %s completed (%d samples)\n", run.ID, len(run.Samples))
	for _, sample := range run.Samples {
		if sample.Error != "" {
			fmt.Printf("  - %-20s FAILED: %s\n", sample.Policy, sample.Error)
			continue
		}
		fmt.Printf("  - %-20s %.2f Mbit/s (%d bytes in %s)\n",
			sample.Policy, sample.ThroughputBps/1e6, sample.Bytes,
			sample.Duration.Round(10*time.Millisecond))
	}

	if benchFlags.out != "" {
		f, err := os.Create(benchFlags.out)
		if err != nil {
			return fmt.Errorf("failed to create CSV file: %w", err)
		}
		defer f.Close()
		if err := bench.WriteCSV(f, run); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		fmt.Printf("✓ Results written to %s\n", benchFlags.out)
	}
	return nil
}

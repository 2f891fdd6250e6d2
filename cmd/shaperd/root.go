package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shaperd",
	Short: "Shaperd - declarative traffic-shaping controller",
	Long: `Shaperd turns named shaping policies into kernel packet-scheduler
configuration and keeps track of which policy is active on which interface.

Policies live in a YAML catalog and come in four kinds:
  - none:  no shaping (clearing the interface is the whole job)
  - cake:  single cake qdisc (bandwidth, rtt, feature flags)
  - netem: network emulation (delay, jitter, loss, rate)
  - htb:   class hierarchy with per-class rates and fq_codel leaves

The controller clears an interface before every apply, stops on the first
failed tc operation, and exposes apply/clear/status over HTTP.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

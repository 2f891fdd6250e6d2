package config

import "time"

// Config is the root configuration for the shaperd process.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Shaping ShapingConfig `yaml:"shaping"`
	Metrics MetricsConfig `yaml:"metrics"`
	Bench   BenchConfig   `yaml:"bench"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the host:port the API listens on.
	ListenAddress string `yaml:"listen_address"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json" or "text").
	Format string `yaml:"format"`
}

// ShapingConfig configures the policy catalog and the shaping controller.
type ShapingConfig struct {
	// CatalogPath is the policy catalog file.
	CatalogPath string `yaml:"catalog_path"`

	// DefaultInterface is used when a request names no interface.
	DefaultInterface string `yaml:"default_interface"`

	// CommandTimeout bounds each tc invocation.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// WatchCatalog enables hot reload of the catalog file.
	WatchCatalog bool `yaml:"watch_catalog"`

	// Bootstrap enables the one-time forwarding/NAT setup at startup.
	Bootstrap bool `yaml:"bootstrap"`

	// WANInterface is the shaped egress interface for NAT bootstrap.
	WANInterface string `yaml:"wan_interface"`

	// LANInterface is the ingress interface for forwarding bootstrap.
	LANInterface string `yaml:"lan_interface"`
}

// MetricsConfig configures prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// BenchConfig configures the load-test harness.
type BenchConfig struct {
	// Enabled turns on the bench subsystem (store and scheduler).
	Enabled bool `yaml:"enabled"`

	// TargetURL is downloaded through the shaped path to measure goodput.
	TargetURL string `yaml:"target_url"`

	// Interface overrides the shaping default interface for bench runs.
	Interface string `yaml:"interface"`

	// Duration is how long each policy's traffic drive runs.
	Duration time.Duration `yaml:"duration"`

	// SettleDelay is the wait between applying a policy and driving
	// traffic, letting the scheduler settle.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// WaitBetween is the pause between consecutive policies in a suite.
	WaitBetween time.Duration `yaml:"wait_between"`

	// DBPath is the sqlite file for persisted results.
	DBPath string `yaml:"db_path"`

	// Schedule is an optional cron expression for recurring suites.
	Schedule string `yaml:"schedule"`
}

package config

import "time"

// Default values applied to omitted configuration fields.
const (
	DefaultListenAddress    = ":5000"
	DefaultReadTimeout      = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 60 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultMaxHeaderBytes   = 1 << 20
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultCatalogPath      = "policies.yaml"
	DefaultInterface        = "eth1"
	DefaultCommandTimeout   = 5 * time.Second
	DefaultLANInterface     = "eth0"
	DefaultMetricsNamespace = "shaperd"
	DefaultBenchDuration    = 30 * time.Second
	DefaultBenchSettle      = 2 * time.Second
	DefaultBenchWait        = 5 * time.Second
	DefaultBenchDBPath      = "data/bench.db"
)

// ApplyDefaults fills omitted fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes <= 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Shaping.CatalogPath == "" {
		cfg.Shaping.CatalogPath = DefaultCatalogPath
	}
	if cfg.Shaping.DefaultInterface == "" {
		cfg.Shaping.DefaultInterface = DefaultInterface
	}
	if cfg.Shaping.CommandTimeout <= 0 {
		cfg.Shaping.CommandTimeout = DefaultCommandTimeout
	}
	if cfg.Shaping.WANInterface == "" {
		cfg.Shaping.WANInterface = cfg.Shaping.DefaultInterface
	}
	if cfg.Shaping.LANInterface == "" {
		cfg.Shaping.LANInterface = DefaultLANInterface
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	if cfg.Bench.Interface == "" {
		cfg.Bench.Interface = cfg.Shaping.DefaultInterface
	}
	if cfg.Bench.Duration <= 0 {
		cfg.Bench.Duration = DefaultBenchDuration
	}
	if cfg.Bench.SettleDelay <= 0 {
		cfg.Bench.SettleDelay = DefaultBenchSettle
	}
	if cfg.Bench.WaitBetween <= 0 {
		cfg.Bench.WaitBetween = DefaultBenchWait
	}
	if cfg.Bench.DBPath == "" {
		cfg.Bench.DBPath = DefaultBenchDBPath
	}
}

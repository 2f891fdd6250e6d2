package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults, environment
// overrides (SHAPERD_*), and validates the result. Environment variables
// always take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides applies SHAPERD_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if val := os.Getenv(key); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				*dst = d
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				*dst = b
			}
		}
	}

	setString("SHAPERD_SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	setDuration("SHAPERD_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("SHAPERD_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("SHAPERD_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	setString("SHAPERD_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("SHAPERD_LOGGING_FORMAT", &cfg.Logging.Format)

	setString("SHAPERD_SHAPING_CATALOG_PATH", &cfg.Shaping.CatalogPath)
	setString("SHAPERD_SHAPING_DEFAULT_INTERFACE", &cfg.Shaping.DefaultInterface)
	setDuration("SHAPERD_SHAPING_COMMAND_TIMEOUT", &cfg.Shaping.CommandTimeout)
	setBool("SHAPERD_SHAPING_WATCH_CATALOG", &cfg.Shaping.WatchCatalog)
	setBool("SHAPERD_SHAPING_BOOTSTRAP", &cfg.Shaping.Bootstrap)
	setString("SHAPERD_SHAPING_WAN_INTERFACE", &cfg.Shaping.WANInterface)
	setString("SHAPERD_SHAPING_LAN_INTERFACE", &cfg.Shaping.LANInterface)

	setBool("SHAPERD_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setString("SHAPERD_METRICS_NAMESPACE", &cfg.Metrics.Namespace)

	setBool("SHAPERD_BENCH_ENABLED", &cfg.Bench.Enabled)
	setString("SHAPERD_BENCH_TARGET_URL", &cfg.Bench.TargetURL)
	setDuration("SHAPERD_BENCH_DURATION", &cfg.Bench.Duration)
	setString("SHAPERD_BENCH_SCHEDULE", &cfg.Bench.Schedule)
	setString("SHAPERD_BENCH_DB_PATH", &cfg.Bench.DBPath)
}

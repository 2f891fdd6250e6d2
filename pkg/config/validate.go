package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for inconsistencies. It assumes
// defaults have been applied.
func Validate(cfg *Config) error {
	if !strings.Contains(cfg.Server.ListenAddress, ":") {
		return fmt.Errorf("server.listen_address %q must be host:port", cfg.Server.ListenAddress)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q must be json or text", cfg.Logging.Format)
	}

	if cfg.Shaping.CatalogPath == "" {
		return fmt.Errorf("shaping.catalog_path must be set")
	}
	if cfg.Shaping.DefaultInterface == "" {
		return fmt.Errorf("shaping.default_interface must be set")
	}

	if cfg.Bench.Enabled {
		if cfg.Bench.TargetURL == "" {
			return fmt.Errorf("bench.target_url must be set when bench is enabled")
		}
		u, err := url.Parse(cfg.Bench.TargetURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("bench.target_url %q must be an http(s) URL", cfg.Bench.TargetURL)
		}
	}
	if cfg.Bench.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Bench.Schedule); err != nil {
			return fmt.Errorf("bench.schedule %q is not a valid cron expression: %w", cfg.Bench.Schedule, err)
		}
	}

	return nil
}

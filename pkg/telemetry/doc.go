// Package telemetry groups the observability subsystems: structured
// logging setup and prometheus metrics.
package telemetry

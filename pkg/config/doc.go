// Package config loads and validates the shaperd process configuration.
//
// Configuration comes from a YAML file, with defaults applied for omitted
// fields and SHAPERD_* environment variables taking precedence over file
// values. Validation runs after defaults and again after overrides, so a
// process never starts with an inconsistent configuration.
package config

// Package config loads, normalizes, and validates forge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FORGE_INPUT_DIR. The Config type centralizes every knob the build runner and
// CLI need so input/output/state directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

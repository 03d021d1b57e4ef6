// Package config loads, normalizes, and validates polereview configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and serve mode need: session directories, viewer rendition sizes,
// checklist items, and report bounds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config

// Package config loads, normalizes, and validates lyricreel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LYRICREEL_NTFY_TOPIC. The Config type centralizes every knob the batch
// controller and CLI need: state/work/output directories, the per-invocation
// track budget, the external stage commands, and the merge encoder settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors. The
// loaded value is passed explicitly to constructors; nothing reads process
// globals.
package config

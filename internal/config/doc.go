// Package config loads, normalizes, and validates bidsmeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// BIDSMETA_CATALOG_PATH. The Config type centralizes every knob the CLI and
// the conversion engine need, so paths, file selection and the error policy
// are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

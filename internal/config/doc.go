// Package config loads, normalizes, and validates Attune configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ATTUNE_PROVIDER_API_KEY. The Config type centralizes every knob the CLI
// needs, allowing library/segment directories and provider credentials to
// be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

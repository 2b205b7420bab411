// Package featurecache persists extracted feature records between
// runs.
//
// Audio analysis is the slowest step of a catalog scan, so every
// record is cached on disk keyed by its content fingerprint. A file
// that has not changed never gets decoded twice.
//
// # Storage
//
// The cache is a single JSON file at a configurable path. The format
// is human-readable and safe to delete at any time; extraction
// rebuilds it on demand. An empty path disables persistence without
// disabling extraction.
//
// CLI commands for inspection and management:
//
//	attune cache stats   # Entry counts by provenance
//	attune cache prune   # Drop stale and orphaned records
//	attune cache clear   # Remove all entries
package featurecache

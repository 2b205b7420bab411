// Package features extracts audio feature records from media files.
//
// Extraction analyzes only the leading window of each file (a
// configurable fraction of its duration) because retrieval scores
// candidates against the opening stage of a therapy sequence. Records
// carry one of two payloads, selected by Provenance: an opaque
// embedding vector from the provider, or the local statistical profile
// computed by internal/dsp when the provider is unavailable.
//
// Records are keyed by a stat-based fingerprint so edits to a file, or
// a change of analysis window, naturally invalidate old cache entries.
// ExtractBatch runs on a bounded worker pool and isolates per-file
// failures; a broken file is skipped, never fatal to the batch.
package features

// Package catalog persists the segment library in SQLite.
//
// Every playable unit the system knows about is a segment row: either
// a cut produced by the segmenter or a whole media file registered
// as a single-part segment. Rows track where the segment came from,
// its position within the source, whether it is the lead (match-stage)
// cut, and whether features have been extracted for it.
//
// The store applies WAL journaling and retries briefly on SQLITE_BUSY
// so the CLI and a concurrent extraction batch can share the database.
package catalog

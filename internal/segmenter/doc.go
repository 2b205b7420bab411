// Package segmenter cuts library sources into fixed-duration segments
// and registers them in the catalog.
//
// Cuts are stream copies: ffmpeg re-muxes without re-encoding, so a
// pass over a large library is I/O bound rather than CPU bound and the
// source quality is preserved. Each source yields segments per
// configured duration; the first cut of every duration is the lead
// segment, whose opening carries the match stage that retrieval
// scores. Existing cuts are reused unless forced.
package segmenter

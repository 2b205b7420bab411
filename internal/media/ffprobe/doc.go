// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, size)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result answer the questions the extraction and
// segmenting paths ask: how long is the file, does it carry audio,
// and at what sample rate.
package ffprobe

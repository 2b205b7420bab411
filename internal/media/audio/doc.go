// Package audio decodes media files into raw PCM samples via ffmpeg.
//
// This package depends only on internal/logging and could be extracted
// as a standalone library alongside ffprobe.
//
// Decoding always downmixes to mono at SampleRate so that downstream
// analysis sees a single uniform sample stream regardless of the source
// container or channel layout. Samples are normalized to [-1, 1].
//
// Key types:
//   - Decoder: wraps an ffmpeg binary with an injectable command runner
//
// Primary entry point:
//   - Decoder.DecodeWindow: decodes the leading window of a file
package audio

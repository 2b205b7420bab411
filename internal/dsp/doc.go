// Package dsp computes statistical audio features from PCM samples.
//
// Analysis covers amplitude statistics, spectral shape via a padded
// radix-2 FFT, energy-delta onset detection for tempo and rhythm, and
// perceptual estimates (loudness, brightness, warmth, roughness). It
// produces the fallback feature profile when no embedding provider is
// reachable; the statistical kernels are shared with the scoring
// package's embedding projection.
package dsp

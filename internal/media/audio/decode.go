package audio

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"attune/internal/logging"
)

// SampleRate is the rate all media is resampled to before analysis.
// 22050 Hz keeps decode output small while preserving the spectral
// range the feature pipeline cares about (up to ~11 kHz).
const SampleRate = 22050

// DefaultBinary is the ffmpeg executable used when none is configured.
const DefaultBinary = "ffmpeg"

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Decoder turns media files into normalized mono PCM sample slices.
type Decoder struct {
	binary string
	runner commandRunner
	logger *slog.Logger
}

// Option customizes a Decoder.
type Option func(*Decoder)

// WithCommandRunner sets a custom command runner (for testing).
func WithCommandRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) Option {
	return func(d *Decoder) {
		d.runner = runner
	}
}

// NewDecoder creates a Decoder backed by the given ffmpeg binary.
// An empty binary falls back to DefaultBinary; a nil logger is replaced
// with a no-op logger.
func NewDecoder(binary string, logger *slog.Logger, opts ...Option) *Decoder {
	if binary == "" {
		binary = DefaultBinary
	}
	d := &Decoder{
		binary: binary,
		runner: defaultRunner,
		logger: logging.NewComponentLogger(logger, "audio"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecodeWindow decodes up to the first seconds of audio from path into
// mono float64 samples at SampleRate. When seconds <= 0 the whole file
// is decoded. Files without a decodable audio stream yield an error.
func (d *Decoder) DecodeWindow(ctx context.Context, path string, seconds float64) ([]float64, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("decode audio: path required")
	}

	args := []string{"-hide_banner", "-nostdin", "-i", path}
	if seconds > 0 {
		args = append(args, "-t", strconv.FormatFloat(seconds, 'f', 3, 64))
	}
	args = append(args,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(SampleRate),
		"-f", "s16le",
		"-",
	)

	raw, err := d.runner(ctx, d.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	samples := samplesFromPCM(raw)
	if len(samples) == 0 {
		return nil, fmt.Errorf("decode audio: no audio decoded from %s", path)
	}

	d.logger.Debug("decoded audio window",
		logging.String("path", path),
		logging.Int("samples", len(samples)),
		logging.Float64("window_seconds", seconds),
	)
	return samples, nil
}

// samplesFromPCM converts little-endian signed 16-bit PCM into floats
// in [-1, 1). A trailing odd byte is ignored.
func samplesFromPCM(raw []byte) []float64 {
	n := len(raw) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}
	return samples
}

// defaultRunner executes the command and returns stdout. Stdout carries
// raw PCM, so stderr is captured separately and folded into the error.
func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, lastLine(detail))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// lastLine trims ffmpeg's banner noise down to the final stderr line,
// which is where ffmpeg reports the actual failure.
func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return s
}

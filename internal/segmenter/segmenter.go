package segmenter

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"attune/internal/catalog"
	"attune/internal/logging"
	"attune/internal/media/ffprobe"
	"attune/internal/services"
	"attune/internal/textutil"
)

const component = "segmenter"

// DefaultBinary is the ffmpeg executable used when none is configured.
const DefaultBinary = "ffmpeg"

// DefaultDurations lists the segment lengths cut from every source, in
// minutes.
var DefaultDurations = []int{1, 3, 5, 10, 20, 30}

var sourceExtensions = map[string]struct{}{
	".mp4": {},
	".avi": {},
	".mov": {},
	".mkv": {},
	".wmv": {},
}

// ProbeFunc inspects a media file. Probe curries ffprobe.Inspect with
// a binary; tests substitute their own.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Probe returns a ProbeFunc backed by the given ffprobe binary.
func Probe(binary string) ProbeFunc {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// Registrar records segments. catalog.Store satisfies it.
type Registrar interface {
	Upsert(ctx context.Context, seg catalog.Segment) (*catalog.Segment, error)
}

type commandRunner func(ctx context.Context, name string, args ...string) error

// Config assembles a Segmenter.
type Config struct {
	// Binary is the ffmpeg executable. Empty means DefaultBinary.
	Binary string
	// SegmentsDir is the root under which per-duration subdirectories
	// are created.
	SegmentsDir string
	// Durations lists segment lengths in minutes. Empty means
	// DefaultDurations.
	Durations []int
	Probe     ProbeFunc
	Catalog   Registrar
	Logger    *slog.Logger
}

// Option adjusts a Segmenter.
type Option func(*Segmenter)

// WithCommandRunner substitutes the process runner, for tests.
func WithCommandRunner(runner commandRunner) Option {
	return func(s *Segmenter) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// RunOptions control one segmentation pass.
type RunOptions struct {
	// LeadOnly cuts only the first segment per duration. Later parts
	// never carry the match stage, so this is the common mode.
	LeadOnly bool
	// Force re-cuts segments that already exist on disk.
	Force bool
}

// Result summarizes a library pass.
type Result struct {
	Sources  int
	Segments int
	Failed   int
}

// Segmenter cuts sources with ffmpeg and registers the pieces.
type Segmenter struct {
	binary    string
	dir       string
	durations []int
	probe     ProbeFunc
	catalog   Registrar
	runner    commandRunner
	logger    *slog.Logger
}

// New validates cfg and builds a Segmenter.
func New(cfg Config, opts ...Option) (*Segmenter, error) {
	if strings.TrimSpace(cfg.SegmentsDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "segments directory is required", nil)
	}
	if cfg.Probe == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "probe is required", nil)
	}
	if cfg.Catalog == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "catalog is required", nil)
	}
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		binary = DefaultBinary
	}
	durations := cfg.Durations
	if len(durations) == 0 {
		durations = DefaultDurations
	}
	for _, minutes := range durations {
		if minutes <= 0 {
			return nil, services.Wrap(services.ErrConfiguration, component, "new",
				fmt.Sprintf("segment duration %d must be positive", minutes), nil)
		}
	}

	s := &Segmenter{
		binary:    binary,
		dir:       cfg.SegmentsDir,
		durations: append([]int(nil), durations...),
		probe:     cfg.Probe,
		catalog:   cfg.Catalog,
		runner:    defaultRunner,
		logger:    logging.NewComponentLogger(cfg.Logger, component),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SegmentFile cuts one source into every configured duration that fits
// and registers the pieces. Returns the segments registered so far
// alongside any error.
func (s *Segmenter) SegmentFile(ctx context.Context, source string, opts RunOptions) ([]*catalog.Segment, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, services.Wrap(services.ErrValidation, component, "segment", "source path is required", nil)
	}
	info, err := s.probe(ctx, source)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "segment", "probe "+source, err)
	}
	total := info.DurationSeconds()
	if total <= 0 {
		return nil, services.Wrap(services.ErrValidation, component, "segment", "source reports no duration: "+source, nil)
	}

	title := stem(source)
	var out []*catalog.Segment
	for _, minutes := range s.durations {
		segSeconds := float64(minutes * 60)
		parts := int(total / segSeconds)
		if parts == 0 {
			s.logger.Debug("source shorter than duration",
				logging.Args(
					logging.String("source", source),
					logging.Int("minutes", minutes),
				)...)
			continue
		}
		destDir := filepath.Join(s.dir, fmt.Sprintf("%dmin", minutes))
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return out, fmt.Errorf("create segment dir: %w", err)
		}
		limit := parts
		if opts.LeadOnly {
			limit = 1
		}
		for i := 0; i < limit; i++ {
			seg, err := s.cutOne(ctx, source, title, minutes, i, parts, destDir, opts.Force)
			if err != nil {
				return out, err
			}
			out = append(out, seg)
		}
	}
	return out, nil
}

// SegmentLibrary walks root and segments every media file it finds.
// Per-source failures are logged and counted rather than aborting the
// pass.
func (s *Segmenter) SegmentLibrary(ctx context.Context, root string, opts RunOptions) (Result, error) {
	sources, err := ScanSources(root)
	if err != nil {
		return Result{}, err
	}
	res := Result{Sources: len(sources)}
	for _, source := range sources {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		segs, segErr := s.SegmentFile(ctx, source, opts)
		res.Segments += len(segs)
		if segErr != nil {
			res.Failed++
			logging.WarnWithContext(s.logger, "segmentation failed", "segment_failed",
				logging.String("source", source),
				logging.Error(segErr),
				logging.String(logging.FieldErrorHint, "check the source file and ffmpeg output"),
				logging.String(logging.FieldImpact, "source excluded from this pass"))
		}
	}
	s.logger.Info("library segmented",
		logging.Args(
			logging.Int("sources", res.Sources),
			logging.Int("segments", res.Segments),
			logging.Int("failed", res.Failed),
		)...)
	return res, nil
}

// RegisterSource records a whole media file as a single-part lead
// segment so short sources join retrieval without cutting.
func (s *Segmenter) RegisterSource(ctx context.Context, source string) (*catalog.Segment, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, services.Wrap(services.ErrValidation, component, "scan", "source path is required", nil)
	}
	info, err := s.probe(ctx, source)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "scan", "probe "+source, err)
	}
	if !info.HasAudio() {
		return nil, services.Wrap(services.ErrValidation, component, "scan", "no audio stream: "+source, nil)
	}
	st, err := os.Stat(source)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, component, "scan", source, err)
	}
	return s.register(ctx, source, source, stem(source), info.DurationSeconds(), 0, 1, st.Size())
}

// ScanSources walks root and returns media files in lexical order.
func ScanSources(root string) ([]string, error) {
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := sourceExtensions[strings.ToLower(filepath.Ext(path))]; ok {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan media library: %w", err)
	}
	return sources, nil
}

func (s *Segmenter) cutOne(ctx context.Context, source, title string, minutes, index, parts int, destDir string, force bool) (*catalog.Segment, error) {
	segSeconds := float64(minutes * 60)
	start := float64(index) * segSeconds
	name := fmt.Sprintf("%s_seg%03d_%dmin.mp4", textutil.SanitizeToken(title), index, minutes)
	dest := filepath.Join(destDir, name)

	if !force {
		if st, statErr := os.Stat(dest); statErr == nil && st.Size() > 0 {
			s.logger.Debug("segment exists",
				logging.Args(logging.String(logging.FieldSegment, name))...)
			return s.register(ctx, dest, source, title, segSeconds, index, parts, st.Size())
		}
	}

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", source,
		"-ss", formatSeconds(start),
		"-t", formatSeconds(segSeconds),
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dest,
	}
	if err := s.runner(ctx, s.binary, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "segment", "cut "+name, err)
	}
	st, err := os.Stat(dest)
	if err != nil || st.Size() == 0 {
		return nil, services.Wrap(services.ErrExternalTool, component, "segment", "cut produced no output: "+name, err)
	}

	s.logger.Info("segment created",
		logging.Args(
			logging.String(logging.FieldSegment, name),
			logging.String("source", source),
			logging.Int("minutes", minutes),
			logging.Int("part", index),
		)...)
	return s.register(ctx, dest, source, title, segSeconds, index, parts, st.Size())
}

func (s *Segmenter) register(ctx context.Context, dest, source, title string, seconds float64, index, parts int, size int64) (*catalog.Segment, error) {
	stored, err := s.catalog.Upsert(ctx, catalog.Segment{
		SegmentPath: dest,
		SourcePath:  source,
		Title:       title,
		Duration:    seconds,
		PartIndex:   index,
		PartCount:   parts,
		Lead:        index == 0,
		FileSize:    size,
	})
	if err != nil {
		return nil, fmt.Errorf("register segment: %w", err)
	}
	return stored, nil
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package features

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"attune/internal/dsp"
	"attune/internal/fingerprint"
	"attune/internal/logging"
	"attune/internal/media/audio"
	"attune/internal/media/ffprobe"
	"attune/internal/services"
)

const component = "features"

// DefaultExtractRatio is the leading fraction of each file analyzed.
// The window matches the opening portion used when scoring candidates
// against the first therapy stage.
const DefaultExtractRatio = 0.25

// DefaultBatchWorkers bounds concurrent extractions in ExtractBatch.
const DefaultBatchWorkers = 4

// Decoder turns a media file's leading window into PCM samples.
type Decoder interface {
	DecodeWindow(ctx context.Context, path string, seconds float64) ([]float64, error)
}

// Provider produces embedding vectors from PCM windows. Configured
// reports whether an endpoint is set at all; an unconfigured provider
// is skipped without a network round trip.
type Provider interface {
	Configured() bool
	Model() string
	Embed(ctx context.Context, samples []float64, rate int) ([]float64, error)
}

// Cache persists extracted records between runs.
type Cache interface {
	Lookup(fp string) (Record, bool)
	Store(rec Record) error
}

// DurationFunc reports a media file's duration in seconds. Zero with a
// nil error means unknown, which decodes the whole file.
type DurationFunc func(ctx context.Context, path string) (float64, error)

// ProbeDuration builds a DurationFunc backed by ffprobe.
func ProbeDuration(binary string) DurationFunc {
	return func(ctx context.Context, path string) (float64, error) {
		result, err := ffprobe.Inspect(ctx, binary, path)
		if err != nil {
			return 0, err
		}
		return result.DurationSeconds(), nil
	}
}

// Config wires an Extractor's collaborators.
type Config struct {
	// ExtractRatio is the leading fraction of each file to analyze.
	// Zero means DefaultExtractRatio.
	ExtractRatio float64
	// SampleRate overrides the analysis rate. Zero means audio.SampleRate.
	SampleRate int
	// BatchWorkers bounds ExtractBatch concurrency. Zero means
	// DefaultBatchWorkers.
	BatchWorkers int

	Decoder  Decoder
	Duration DurationFunc
	// Provider is optional; nil or unconfigured falls straight to the
	// statistical path.
	Provider Provider
	// Cache is optional; nil disables persistence.
	Cache  Cache
	Logger *slog.Logger
}

// Extractor produces feature records for media files, preferring the
// embedding provider and degrading to local statistical analysis.
type Extractor struct {
	ratio    float64
	rate     int
	workers  int
	decoder  Decoder
	duration DurationFunc
	provider Provider
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// NewExtractor validates cfg and builds an Extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.Decoder == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "decoder required", nil)
	}
	if cfg.Duration == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "duration probe required", nil)
	}
	ratio := cfg.ExtractRatio
	if ratio == 0 {
		ratio = DefaultExtractRatio
	}
	if ratio < 0 || ratio > 1 {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "extract ratio must be in (0, 1]", nil)
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = audio.SampleRate
	}
	if rate < 0 {
		return nil, services.Wrap(services.ErrConfiguration, component, "new", "sample rate must be positive", nil)
	}
	workers := cfg.BatchWorkers
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	return &Extractor{
		ratio:    ratio,
		rate:     rate,
		workers:  workers,
		decoder:  cfg.Decoder,
		duration: cfg.Duration,
		provider: cfg.Provider,
		cache:    cfg.Cache,
		logger:   logging.NewComponentLogger(cfg.Logger, component),
		now:      time.Now,
	}, nil
}

// ExtractRatio returns the configured leading-window fraction.
func (e *Extractor) ExtractRatio() float64 {
	return e.ratio
}

// Extract produces the feature record for one media file, serving a
// fresh cached record when available. Provider outages degrade to the
// statistical path; decode and probe failures fail the file.
func (e *Extractor) Extract(ctx context.Context, path string) (Record, error) {
	var zero Record
	path = strings.TrimSpace(path)
	if path == "" {
		return zero, services.Wrap(services.ErrValidation, component, "extract", "media path required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return zero, services.Wrap(services.ErrNotFound, component, "extract", "media file missing", err)
	}

	fp := fingerprint.FromStat(info.Name(), info.Size(), info.ModTime(), e.ratio)
	if e.cache != nil {
		if rec, ok := e.cache.Lookup(fp); ok && rec.Fresh(e.ratio) {
			e.logger.Debug("serving cached features",
				logging.String(logging.FieldFingerprint, fp),
				logging.String("path", path),
			)
			return rec, nil
		}
	}

	duration, err := e.duration(ctx, path)
	if err != nil {
		return zero, services.Wrap(services.ErrExternalTool, component, "probe duration", path, err)
	}
	seconds := 0.0
	if duration > 0 {
		seconds = duration * e.ratio
	}
	samples, err := e.decoder.DecodeWindow(ctx, path, seconds)
	if err != nil {
		return zero, services.Wrap(services.ErrExternalTool, component, "decode audio", path, err)
	}

	rec := Record{
		Fingerprint:      fp,
		Path:             path,
		Name:             info.Name(),
		ExtractRatio:     e.ratio,
		ExtractedAt:      e.now(),
		FileSize:         info.Size(),
		ExtractorVersion: ExtractorVersion,
	}

	embedded := false
	if e.provider != nil && e.provider.Configured() {
		vector, err := e.provider.Embed(ctx, samples, e.rate)
		switch {
		case err == nil:
			rec.Provenance = ProvenanceEmbedding
			rec.ModelType = e.provider.Model()
			rec.Embedding = vector
			embedded = true
		case ctx.Err() != nil:
			return zero, ctx.Err()
		default:
			logging.WarnWithContext(e.logger, "embedding provider unavailable, using statistical fallback", "provider_fallback",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the provider endpoint in config"),
				logging.String(logging.FieldImpact, "similarity scored from statistical features"),
			)
		}
	}
	if !embedded {
		feats, err := dsp.Analyze(samples, e.rate)
		if err != nil {
			return zero, services.Wrap(services.ErrExtraction, component, "analyze audio", path, err)
		}
		rec.Provenance = ProvenanceStatistical
		rec.ModelType = "statistical"
		rec.Statistical = &feats
	}

	if e.cache != nil {
		if err := e.cache.Store(rec); err != nil {
			logging.WarnWithContext(e.logger, "feature cache store failed", "featurecache_store_failed",
				logging.String(logging.FieldFingerprint, fp),
				logging.Error(err),
				logging.String(logging.FieldImpact, "features will be re-extracted on the next run"),
			)
		}
	}

	e.logger.Info("features extracted",
		logging.String("path", path),
		logging.String(logging.FieldFingerprint, fp),
		logging.String(logging.FieldProvenance, string(rec.Provenance)),
		logging.Int("samples", len(samples)),
	)
	return rec, nil
}

// Skipped pairs a failed batch item with its extraction error.
type Skipped struct {
	Path string
	Err  error
}

// BatchResult collects the outcome of ExtractBatch. Records preserve
// input order; failed items land in Skipped instead.
type BatchResult struct {
	Records []Record
	Skipped []Skipped
}

// ExtractBatch extracts features for every path on a bounded worker
// pool. Individual failures are isolated into the result; the only
// error returned is context cancellation, alongside whatever completed
// before it.
func (e *Extractor) ExtractBatch(ctx context.Context, paths []string) (BatchResult, error) {
	records := make([]*Record, len(paths))
	failures := make([]error, len(paths))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			rec, err := e.Extract(ctx, path)
			if err != nil {
				failures[i] = err
				return
			}
			records[i] = &rec
		}(i, path)
	}
	wg.Wait()

	var result BatchResult
	for i, path := range paths {
		switch {
		case records[i] != nil:
			result.Records = append(result.Records, *records[i])
		case failures[i] != nil:
			logging.WarnWithContext(e.logger, "segment skipped", "extraction_skipped",
				logging.String(logging.FieldSegment, path),
				logging.Error(failures[i]),
				logging.String(logging.FieldImpact, "segment excluded from retrieval"),
			)
			result.Skipped = append(result.Skipped, Skipped{Path: path, Err: failures[i]})
		}
	}

	e.logger.Info("batch extraction complete",
		logging.Int("requested", len(paths)),
		logging.Int("extracted", len(result.Records)),
		logging.Int("skipped", len(result.Skipped)),
	)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

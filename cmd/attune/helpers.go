package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"attune/internal/catalog"
	"attune/internal/config"
	"attune/internal/emotion"
	"attune/internal/featurecache"
	"attune/internal/features"
	"attune/internal/logging"
	"attune/internal/media/audio"
	"attune/internal/retrieval"
	"attune/internal/scoring"
	"attune/internal/segmenter"
	"attune/internal/services/embedding"
	"attune/internal/templates"
	"attune/internal/therapy"
)

const runLogName = "attune.log"

// commandLogger builds a stderr console logger so command output on
// stdout stays clean. An empty level falls back to the configured one.
func commandLogger(ctx *commandContext, level string) (*slog.Logger, error) {
	cfg := ctx.configValue()
	if level == "" && cfg != nil {
		level = cfg.Logging.Level
	}
	format := ""
	if cfg != nil {
		format = cfg.Logging.Format
	}
	return logging.New(logging.Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// queryLogger keeps read-only commands quiet unless something is wrong.
func queryLogger(ctx *commandContext) (*slog.Logger, error) {
	return commandLogger(ctx, "warn")
}

// pipelineLogger tees console output into the run log under the
// configured log directory and prunes rotated logs past retention.
func pipelineLogger(ctx *commandContext) (*slog.Logger, error) {
	cfg := ctx.configValue()
	logger, err := logging.NewWithFile(
		logging.Options{
			Level:            cfg.Logging.Level,
			Format:           cfg.Logging.Format,
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		},
		logging.FileOptions{Path: filepath.Join(cfg.Paths.LogDir, runLogName)},
	)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
		Dir:     cfg.Paths.LogDir,
		Pattern: "*.log",
		Exclude: []string{runLogName},
	})
	return logger, nil
}

// acquireRunLock serializes runs that rewrite the feature cache or the
// segment library. Returns a release func on success.
func acquireRunLock(cfg *config.Config) (func(), error) {
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "attune.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another attune run is already active; wait for it to finish")
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}

// buildEngine wires the feature cache, template store, and scorer into
// a retrieval engine using the configured scoring knobs.
func buildEngine(cfg *config.Config, logger *slog.Logger) (*retrieval.Engine, *featurecache.Cache, *templates.Store, error) {
	cache := featurecache.New(cfg.Paths.FeaturesPath, logger)
	store := templates.NewStore(logger)
	engine, err := retrieval.NewEngine(retrieval.Config{
		Templates:     store,
		Scorer:        scoring.NewScorer(cfg.ScoringConfig()),
		Source:        cache,
		TopK:          cfg.Scoring.TopK,
		MinSimilarity: cfg.Scoring.MinSimilarity,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return engine, cache, store, nil
}

// buildSelector assembles the full selection path from classifier to
// retrieval engine. topK <= 0 keeps the configured default.
func buildSelector(cfg *config.Config, logger *slog.Logger, topK int) (*therapy.Selector, error) {
	engine, _, store, err := buildEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = cfg.Scoring.TopK
	}
	return therapy.NewSelector(therapy.Config{
		Classifier:   emotion.NewClassifier(logger),
		Picker:       engine,
		Templates:    store,
		TopK:         topK,
		HistoryLimit: cfg.History.Limit,
		Logger:       logger,
	})
}

// buildExtractor wires the ffmpeg decoder, ffprobe duration probe, and
// optional embedding provider into a feature extractor that persists
// into cache.
func buildExtractor(cfg *config.Config, cache *featurecache.Cache, logger *slog.Logger, workers int) (*features.Extractor, error) {
	if workers <= 0 {
		workers = cfg.Extraction.Workers
	}
	return features.NewExtractor(features.Config{
		BatchWorkers: workers,
		Decoder:      audio.NewDecoder(cfg.FFmpegBinary(), logger),
		Duration:     features.ProbeDuration(cfg.FFprobeBinary()),
		Provider:     embedding.NewClient(cfg.ProviderConfig()),
		Cache:        cache,
		Logger:       logger,
	})
}

func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open segment catalog: %w", err)
	}
	return store, nil
}

// buildSegmenter constructs the library segmenter backed by the
// catalog. An empty durations slice keeps the configured ladder.
func buildSegmenter(cfg *config.Config, store *catalog.Store, logger *slog.Logger, durations []int) (*segmenter.Segmenter, error) {
	if len(durations) == 0 {
		durations = cfg.Segments.Durations
	}
	return segmenter.New(segmenter.Config{
		Binary:      cfg.FFmpegBinary(),
		SegmentsDir: cfg.Paths.SegmentsDir,
		Durations:   durations,
		Probe:       segmenter.Probe(cfg.FFprobeBinary()),
		Catalog:     store,
		Logger:      logger,
	})
}

// formatSeconds renders a duration in seconds for table output.
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", seconds)
	}
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int(d % time.Minute / time.Second)
	if m >= 60 {
		return fmt.Sprintf("%dh%02dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// formatScore renders a similarity score with stable precision.
func formatScore(score float64) string {
	return fmt.Sprintf("%.3f", score)
}

// formatConfidence renders classifier confidence as a percentage.
func formatConfidence(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

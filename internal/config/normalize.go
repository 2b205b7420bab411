package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"attune/internal/features"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeProvider()
	c.normalizeScoring()
	c.normalizeSegments()
	c.normalizeInsights()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SegmentsDir) == "" {
		c.Paths.SegmentsDir = defaultSegmentsDir
	}
	if c.Paths.SegmentsDir, err = expandPath(c.Paths.SegmentsDir); err != nil {
		return fmt.Errorf("paths.segments_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.FeaturesPath) == "" {
		c.Paths.FeaturesPath = defaultFeaturesPath
	}
	if c.Paths.FeaturesPath, err = expandPath(c.Paths.FeaturesPath); err != nil {
		return fmt.Errorf("paths.features_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.Workers <= 0 {
		c.Extraction.Workers = features.DefaultBatchWorkers
	}
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	c.Extraction.FFprobeBinary = strings.TrimSpace(c.Extraction.FFprobeBinary)
}

func (c *Config) normalizeProvider() {
	c.Provider.URL = strings.TrimRight(strings.TrimSpace(c.Provider.URL), "/")
	c.Provider.Model = strings.TrimSpace(c.Provider.Model)
	if c.Provider.Model == "" {
		c.Provider.Model = defaultProviderModel
	}
	c.Provider.APIKey = strings.TrimSpace(c.Provider.APIKey)
	if value, ok := os.LookupEnv("ATTUNE_PROVIDER_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.Provider.APIKey = strings.TrimSpace(value)
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = defaultProviderTimeout
	}
}

func (c *Config) normalizeScoring() {
	defaults := Default().Scoring
	if c.Scoring.EmbeddingCosineWeight == 0 && c.Scoring.EmbeddingEuclideanWeight == 0 {
		c.Scoring.EmbeddingCosineWeight = defaults.EmbeddingCosineWeight
		c.Scoring.EmbeddingEuclideanWeight = defaults.EmbeddingEuclideanWeight
	}
	if c.Scoring.StatisticalCosineWeight == 0 && c.Scoring.StatisticalEuclideanWeight == 0 {
		c.Scoring.StatisticalCosineWeight = defaults.StatisticalCosineWeight
		c.Scoring.StatisticalEuclideanWeight = defaults.StatisticalEuclideanWeight
	}
	// Zero means unset. Negative values are left for Validate to reject.
	if c.Scoring.TopK == 0 {
		c.Scoring.TopK = defaults.TopK
	}
}

func (c *Config) normalizeSegments() {
	seen := make(map[int]struct{}, len(c.Segments.Durations))
	durations := make([]int, 0, len(c.Segments.Durations))
	for _, minutes := range c.Segments.Durations {
		if minutes <= 0 {
			continue
		}
		if _, ok := seen[minutes]; ok {
			continue
		}
		seen[minutes] = struct{}{}
		durations = append(durations, minutes)
	}
	if len(durations) == 0 {
		durations = Default().Segments.Durations
	}
	sort.Ints(durations)
	c.Segments.Durations = durations
}

func (c *Config) normalizeInsights() {
	defaults := Default().Insights
	if c.Insights.Groups <= 0 {
		c.Insights.Groups = defaults.Groups
	}
	if c.Insights.MinGroupSize <= 0 {
		c.Insights.MinGroupSize = defaults.MinGroupSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

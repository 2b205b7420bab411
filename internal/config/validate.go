package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateSegments(); err != nil {
		return err
	}
	if err := c.validateInsights(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SegmentsDir) == "" {
		return errors.New("paths.segments_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		return errors.New("paths.catalog_path must be set")
	}
	if strings.TrimSpace(c.Paths.FeaturesPath) == "" {
		return errors.New("paths.features_path must be set")
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if c.Extraction.Workers <= 0 {
		return errors.New("extraction.workers must be positive")
	}
	return nil
}

func (c *Config) validateProvider() error {
	if !c.Provider.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Provider.URL) == "" {
		return errors.New("provider.url must be set when provider.enabled is true")
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return errors.New("provider.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateScoring() error {
	weights := map[string]float64{
		"scoring.embedding_cosine_weight":      c.Scoring.EmbeddingCosineWeight,
		"scoring.embedding_euclidean_weight":   c.Scoring.EmbeddingEuclideanWeight,
		"scoring.statistical_cosine_weight":    c.Scoring.StatisticalCosineWeight,
		"scoring.statistical_euclidean_weight": c.Scoring.StatisticalEuclideanWeight,
	}
	for key, value := range weights {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	if c.Scoring.EmbeddingCosineWeight+c.Scoring.EmbeddingEuclideanWeight <= 0 {
		return errors.New("scoring embedding weights must not both be zero")
	}
	if c.Scoring.StatisticalCosineWeight+c.Scoring.StatisticalEuclideanWeight <= 0 {
		return errors.New("scoring statistical weights must not both be zero")
	}
	if c.Scoring.MinSimilarity > 1 {
		return errors.New("scoring.min_similarity must not exceed 1")
	}
	if c.Scoring.TopK <= 0 {
		return errors.New("scoring.top_k must be positive")
	}
	return nil
}

func (c *Config) validateSegments() error {
	if len(c.Segments.Durations) == 0 {
		return errors.New("segments.durations must include at least one duration")
	}
	for _, minutes := range c.Segments.Durations {
		if minutes <= 0 {
			return errors.New("segments.durations must be positive minutes")
		}
	}
	return nil
}

func (c *Config) validateInsights() error {
	if c.Insights.Groups <= 0 {
		return errors.New("insights.groups must be positive")
	}
	if c.Insights.MinGroupSize <= 0 {
		return errors.New("insights.min_group_size must be positive")
	}
	return nil
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"attune/internal/scoring"
	"attune/internal/services/embedding"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	LibraryDir   string `toml:"library_dir"`
	SegmentsDir  string `toml:"segments_dir"`
	CatalogPath  string `toml:"catalog_path"`
	FeaturesPath string `toml:"features_path"`
	LogDir       string `toml:"log_dir"`
}

// Extraction contains configuration for audio decoding and feature
// extraction.
type Extraction struct {
	Workers       int    `toml:"workers"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Provider contains configuration for the embedding provider service.
type Provider struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Scoring contains similarity blend weights and retrieval thresholds.
type Scoring struct {
	EmbeddingCosineWeight      float64 `toml:"embedding_cosine_weight"`
	EmbeddingEuclideanWeight   float64 `toml:"embedding_euclidean_weight"`
	StatisticalCosineWeight    float64 `toml:"statistical_cosine_weight"`
	StatisticalEuclideanWeight float64 `toml:"statistical_euclidean_weight"`
	// MinSimilarity is the retrieval score floor. Negative disables the
	// floor entirely.
	MinSimilarity float64 `toml:"min_similarity"`
	TopK          int     `toml:"top_k"`
}

// Segments contains configuration for segment preparation.
type Segments struct {
	// Durations lists the cut lengths in minutes.
	Durations []int `toml:"durations"`
}

// Insights contains configuration for catalog grouping.
type Insights struct {
	Groups       int `toml:"groups"`
	MinGroupSize int `toml:"min_group_size"`
}

// History contains configuration for the selection history.
type History struct {
	// Limit caps recorded selections. Negative keeps history unbounded.
	Limit int `toml:"limit"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Attune.
//
// Configuration sections by subsystem:
//   - Paths: media library, segment output, catalog and cache locations
//   - Extraction: decode workers and external binary names
//   - Provider: embedding provider endpoint and credentials
//   - Scoring: similarity blend weights and retrieval thresholds
//   - Segments: cut durations for segment preparation
//   - Insights: catalog grouping parameters
//   - History: selection history bound
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Provider   Provider   `toml:"provider"`
	Scoring    Scoring    `toml:"scoring"`
	Segments   Segments   `toml:"segments"`
	Insights   Insights   `toml:"insights"`
	History    History    `toml:"history"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/attune/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("attune.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
// LibraryDir is created on a best-effort basis so commands still run
// when external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.SegmentsDir,
		c.Paths.LogDir,
		filepath.Dir(c.Paths.CatalogPath),
		filepath.Dir(c.Paths.FeaturesPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decoding and cutting.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

// ProviderConfig maps the [provider] section onto the embedding client
// configuration. Disabled providers yield an unconfigured client.
func (c *Config) ProviderConfig() embedding.Config {
	if !c.Provider.Enabled {
		return embedding.Config{}
	}
	return embedding.Config{
		BaseURL:        strings.TrimSpace(c.Provider.URL),
		Model:          strings.TrimSpace(c.Provider.Model),
		APIKey:         strings.TrimSpace(c.Provider.APIKey),
		TimeoutSeconds: c.Provider.TimeoutSeconds,
	}
}

// ScoringConfig maps the [scoring] section onto the scorer's blend weights.
func (c *Config) ScoringConfig() scoring.Config {
	return scoring.Config{
		Embedding: scoring.Weights{
			Cosine:    c.Scoring.EmbeddingCosineWeight,
			Euclidean: c.Scoring.EmbeddingEuclideanWeight,
		},
		Statistical: scoring.Weights{
			Cosine:    c.Scoring.StatisticalCosineWeight,
			Euclidean: c.Scoring.StatisticalEuclideanWeight,
		},
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

package config

import (
	"attune/internal/features"
	"attune/internal/insights"
	"attune/internal/retrieval"
	"attune/internal/scoring"
	"attune/internal/segmenter"
	"attune/internal/therapy"
)

const (
	defaultLibraryDir       = "~/media"
	defaultSegmentsDir      = "~/.local/share/attune/segments"
	defaultCatalogPath      = "~/.local/share/attune/catalog.db"
	defaultFeaturesPath     = "~/.local/share/attune/features.json"
	defaultLogDir           = "~/.local/share/attune/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
	defaultProviderModel    = "clamp3"
	defaultProviderTimeout  = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	blend := scoring.DefaultConfig()
	return Config{
		Paths: Paths{
			LibraryDir:   defaultLibraryDir,
			SegmentsDir:  defaultSegmentsDir,
			CatalogPath:  defaultCatalogPath,
			FeaturesPath: defaultFeaturesPath,
			LogDir:       defaultLogDir,
		},
		Extraction: Extraction{
			Workers: features.DefaultBatchWorkers,
		},
		Provider: Provider{
			Model:          defaultProviderModel,
			TimeoutSeconds: defaultProviderTimeout,
		},
		Scoring: Scoring{
			EmbeddingCosineWeight:      blend.Embedding.Cosine,
			EmbeddingEuclideanWeight:   blend.Embedding.Euclidean,
			StatisticalCosineWeight:    blend.Statistical.Cosine,
			StatisticalEuclideanWeight: blend.Statistical.Euclidean,
			MinSimilarity:              retrieval.DefaultMinSimilarity,
			TopK:                       retrieval.DefaultTopK,
		},
		Segments: Segments{
			Durations: append([]int(nil), segmenter.DefaultDurations...),
		},
		Insights: Insights{
			Groups:       insights.DefaultGroups,
			MinGroupSize: insights.DefaultMinGroupSize,
		},
		History: History{
			Limit: therapy.DefaultHistoryLimit,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

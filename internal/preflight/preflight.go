package preflight

import (
	"context"

	"attune/internal/config"
)

// MinFreeBytes is the disk space floor for the segments directory.
// Stream-copied segments roughly double the footprint of each source
// file while cutting.
const MinFreeBytes = 1 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	results = append(results, CheckDirectoryAccess("Segments directory", cfg.Paths.SegmentsDir))
	results = append(results, CheckBinaries(SystemRequirements(cfg))...)
	results = append(results, CheckDiskSpace("Segments disk space", cfg.Paths.SegmentsDir, MinFreeBytes))
	results = append(results, CheckCatalog(ctx, cfg.Paths.CatalogPath))
	results = append(results, CheckFeatureCache(cfg.Paths.FeaturesPath))

	if cfg.Provider.Enabled {
		results = append(results, CheckProvider(ctx, cfg.ProviderConfig()))
	}

	return results
}

// SystemRequirements lists the external binaries the pipeline shells
// out to. Both RunAll and the status command consume this to avoid
// duplicating the requirements list.
func SystemRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio decoding and segment cutting",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for media inspection",
		},
	}
}

// Failed reports whether any non-optional check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed && !result.Optional {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"attune/internal/catalog"
	"attune/internal/featurecache"
	"attune/internal/features"
	"attune/internal/fingerprint"
)

type extractSkipped struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type extractSummary struct {
	Extracted int              `json:"extracted"`
	Skipped   []extractSkipped `json:"skipped,omitempty"`
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		force   bool
		workers int
	)
	cmd := &cobra.Command{
		Use:   "extract [media...]",
		Short: "Extract audio features into the feature cache",
		Long: "Extract decodes the leading window of each media file, computes its\n" +
			"feature record, and persists the record in the feature cache. With no\n" +
			"arguments it processes catalog segments without extracted features.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := pipelineLogger(ctx)
			if err != nil {
				return err
			}
			release, err := acquireRunLock(cfg)
			if err != nil {
				return err
			}
			defer release()

			cache := featurecache.New(cfg.Paths.FeaturesPath, logger)
			extractor, err := buildExtractor(cfg, cache, logger, workers)
			if err != nil {
				return err
			}

			paths := args
			var store *catalog.Store
			var segmentByPath map[string]*catalog.Segment
			if len(paths) == 0 {
				store, err = openCatalog(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				segments, err := store.List(cmd.Context(), catalog.ListOptions{Unextracted: !force})
				if err != nil {
					return err
				}
				if len(segments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to extract; run 'attune catalog scan' or 'attune segment' first.")
					return nil
				}
				segmentByPath = make(map[string]*catalog.Segment, len(segments))
				paths = make([]string, 0, len(segments))
				for _, seg := range segments {
					paths = append(paths, seg.SegmentPath)
					segmentByPath[seg.SegmentPath] = seg
				}
			}

			if force {
				for _, path := range paths {
					fp, err := fingerprint.Compute(path, extractor.ExtractRatio())
					if err != nil {
						continue
					}
					_ = cache.Remove(fp)
				}
			}

			result, err := extractor.ExtractBatch(cmd.Context(), paths)
			if err != nil {
				return err
			}
			for _, rec := range result.Records {
				seg, ok := segmentByPath[rec.Path]
				if !ok || store == nil {
					continue
				}
				if err := store.MarkExtracted(cmd.Context(), seg.ID, rec.Fingerprint); err != nil {
					logger.Warn("marking segment extracted failed", "segment", seg.SegmentPath, "error", err)
				}
			}
			return emitExtractSummary(cmd, ctx, result)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-extract even when a fresh cached record exists")
	cmd.Flags().IntVar(&workers, "workers", 0, "extraction worker count")
	return cmd
}

func emitExtractSummary(cmd *cobra.Command, ctx *commandContext, result features.BatchResult) error {
	if ctx.JSONMode() {
		summary := extractSummary{Extracted: len(result.Records)}
		for _, sk := range result.Skipped {
			summary.Skipped = append(summary.Skipped, extractSkipped{Path: sk.Path, Error: sk.Err.Error()})
		}
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	kind := statusOK
	if len(result.Records) == 0 && len(result.Skipped) > 0 {
		kind = statusError
	}
	total := len(result.Records) + len(result.Skipped)
	fmt.Fprintln(out, renderStatusLine("Extracted", kind,
		fmt.Sprintf("%d of %d files", len(result.Records), total), colorize))
	for _, sk := range result.Skipped {
		fmt.Fprintln(out, renderStatusLine("Skipped", statusWarn,
			fmt.Sprintf("%s: %v", filepath.Base(sk.Path), sk.Err), colorize))
	}
	return nil
}

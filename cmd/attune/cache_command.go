package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"attune/internal/featurecache"
	"attune/internal/features"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the feature cache",
	}
	cmd.AddCommand(
		newCacheStatsCommand(ctx),
		newCacheListCommand(ctx),
		newCachePruneCommand(ctx),
		newCacheClearCommand(ctx),
	)
	return cmd
}

func openFeatureCache(ctx *commandContext) (*featurecache.Cache, error) {
	logger, err := queryLogger(ctx)
	if err != nil {
		return nil, err
	}
	return featurecache.New(ctx.configValue().Paths.FeaturesPath, logger), nil
}

type cacheStatsJSON struct {
	Path       string         `json:"path"`
	Records    int            `json:"records"`
	Provenance map[string]int `json:"provenance"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show feature cache counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openFeatureCache(ctx)
			if err != nil {
				return err
			}
			byProvenance := cache.Stats()
			if ctx.JSONMode() {
				provenance := make(map[string]int, len(byProvenance))
				for k, v := range byProvenance {
					provenance[string(k)] = v
				}
				return writeJSON(cmd, cacheStatsJSON{
					Path:       ctx.configValue().Paths.FeaturesPath,
					Records:    cache.Count(),
					Provenance: provenance,
				})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Cache file", statusInfo, ctx.configValue().Paths.FeaturesPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Records", statusInfo, strconv.Itoa(cache.Count()), colorize))
			fmt.Fprintln(out, renderStatusLine("Statistical", statusInfo,
				strconv.Itoa(byProvenance[features.ProvenanceStatistical]), colorize))
			fmt.Fprintln(out, renderStatusLine("Embedding", statusInfo,
				strconv.Itoa(byProvenance[features.ProvenanceEmbedding]), colorize))
			return nil
		},
	}
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached feature records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openFeatureCache(ctx)
			if err != nil {
				return err
			}
			records := cache.List()
			if ctx.JSONMode() {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Feature cache is empty; run 'attune extract'.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				fp := rec.Fingerprint
				if len(fp) > 12 {
					fp = fp[:12]
				}
				rows = append(rows, []string{
					fp,
					rec.Name,
					string(rec.Provenance),
					rec.ExtractedAt.Format("2006-01-02 15:04"),
					rec.ExtractorVersion,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Fingerprint", "Segment", "Provenance", "Extracted", "Version"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop records whose media files no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openFeatureCache(ctx)
			if err != nil {
				return err
			}
			pruned, err := cache.Prune()
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int{"pruned": pruned})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale records.\n", pruned)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached feature record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := openFeatureCache(ctx)
			if err != nil {
				return err
			}
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int{"cleared": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d records.\n", count)
			return nil
		},
	}
}

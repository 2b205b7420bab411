package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"attune/internal/catalog"
	"attune/internal/descriptor"
	"attune/internal/featurecache"
	"attune/internal/insights"
	"attune/internal/segmenter"
)

type segmentJSON struct {
	ID          int64     `json:"id"`
	SegmentPath string    `json:"segment_path"`
	SourcePath  string    `json:"source_path"`
	Title       string    `json:"title"`
	Duration    float64   `json:"duration_seconds"`
	PartIndex   int       `json:"part_index"`
	PartCount   int       `json:"part_count"`
	Lead        bool      `json:"lead"`
	FileSize    int64     `json:"file_size"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Extracted   bool      `json:"extracted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func segmentToJSON(seg *catalog.Segment) segmentJSON {
	return segmentJSON{
		ID:          seg.ID,
		SegmentPath: seg.SegmentPath,
		SourcePath:  seg.SourcePath,
		Title:       seg.Title,
		Duration:    seg.Duration,
		PartIndex:   seg.PartIndex,
		PartCount:   seg.PartCount,
		Lead:        seg.Lead,
		FileSize:    seg.FileSize,
		Fingerprint: seg.Fingerprint,
		Extracted:   seg.Extracted,
		CreatedAt:   seg.CreatedAt,
		UpdatedAt:   seg.UpdatedAt,
	}
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the segment catalog",
	}
	cmd.AddCommand(
		newCatalogScanCommand(ctx),
		newCatalogListCommand(ctx),
		newCatalogStatsCommand(ctx),
		newCatalogPruneCommand(ctx),
		newCatalogRemoveCommand(ctx),
		newCatalogClearCommand(ctx),
		newCatalogInsightsCommand(ctx),
	)
	return cmd
}

type scanFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type scanSummary struct {
	Root       string        `json:"root"`
	Found      int           `json:"found"`
	Registered int           `json:"registered"`
	Pruned     int64         `json:"pruned,omitempty"`
	Failed     []scanFailure `json:"failed,omitempty"`
}

func newCatalogScanCommand(ctx *commandContext) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: "Register media files found on disk into the catalog",
		Long: "Scan walks the segments directory (or the given root), probes each\n" +
			"media file, and registers it as a single-part lead segment. Files the\n" +
			"catalog already knows keep their row. Probe failures skip the file.",
		Args: cobra.MaximumNArgs(1),
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

			root := cfg.Paths.SegmentsDir
			if len(args) == 1 {
				root = args[0]
			}
			store, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			seg, err := buildSegmenter(cfg, store, logger, nil)
			if err != nil {
				return err
			}
			sources, err := segmenter.ScanSources(root)
			if err != nil {
				return err
			}
			summary := scanSummary{Root: root, Found: len(sources)}
			for _, source := range sources {
				if _, err := seg.RegisterSource(cmd.Context(), source); err != nil {
					summary.Failed = append(summary.Failed, scanFailure{Path: source, Error: err.Error()})
					continue
				}
				summary.Registered++
			}
			if prune {
				pruned, err := store.Prune(cmd.Context())
				if err != nil {
					return err
				}
				summary.Pruned = pruned
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Scanned", statusInfo,
				fmt.Sprintf("%d media files under %s", summary.Found, root), colorize))
			fmt.Fprintln(out, renderStatusLine("Registered", statusOK,
				fmt.Sprintf("%d segments", summary.Registered), colorize))
			if prune {
				fmt.Fprintln(out, renderStatusLine("Pruned", statusInfo,
					fmt.Sprintf("%d stale rows", summary.Pruned), colorize))
			}
			for _, fail := range summary.Failed {
				fmt.Fprintln(out, renderStatusLine("Skipped", statusWarn,
					fmt.Sprintf("%s: %s", filepath.Base(fail.Path), fail.Error), colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "drop rows whose segment files vanished after scanning")
	return cmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var (
		source      string
		leadOnly    bool
		unextracted bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()
			segments, err := store.List(cmd.Context(), catalog.ListOptions{
				Source:      source,
				LeadOnly:    leadOnly,
				Unextracted: unextracted,
			})
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				views := make([]segmentJSON, 0, len(segments))
				for _, seg := range segments {
					views = append(views, segmentToJSON(seg))
				}
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(segments) == 0 {
				fmt.Fprintln(out, "Catalog is empty; run 'attune segment' or 'attune catalog scan'.")
				return nil
			}
			rows := make([][]string, 0, len(segments))
			for _, seg := range segments {
				part := "-"
				if seg.PartIndex > 0 {
					part = fmt.Sprintf("%d/%d", seg.PartIndex, seg.PartCount)
				}
				rows = append(rows, []string{
					strconv.FormatInt(seg.ID, 10),
					seg.Title,
					part,
					formatSeconds(seg.Duration),
					yesNo(seg.Lead),
					yesNo(seg.Extracted),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Part", "Duration", "Lead", "Extracted"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "only segments cut from this source file")
	cmd.Flags().BoolVar(&leadOnly, "lead-only", false, "only lead segments")
	cmd.Flags().BoolVar(&unextracted, "unextracted", false, "only segments without extracted features")
	return cmd
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, stats)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Segments", statusInfo, strconv.Itoa(stats.Segments), colorize))
			fmt.Fprintln(out, renderStatusLine("Sources", statusInfo, strconv.Itoa(stats.Sources), colorize))
			fmt.Fprintln(out, renderStatusLine("Leads", statusInfo, strconv.Itoa(stats.Leads), colorize))
			fmt.Fprintln(out, renderStatusLine("Extracted", statusInfo, strconv.Itoa(stats.Extracted), colorize))
			fmt.Fprintln(out, renderStatusLine("Total duration", statusInfo, formatSeconds(stats.TotalDuration), colorize))
			return nil
		},
	}
}

func newCatalogPruneCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop catalog rows whose segment files no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()
			pruned, err := store.Prune(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int64{"pruned": pruned})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale rows.\n", pruned)
			return nil
		},
	}
}

func newCatalogRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove one segment row by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid segment id %q", args[0])
			}
			store, err := openCatalog(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("segment %d not found", id)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int64{"removed": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed segment %d.\n", id)
			return nil
		},
	}
}

func newCatalogClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every segment row",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx.configValue())
			if err != nil {
				return err
			}
			defer store.Close()
			cleared, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]int64{"cleared": cleared})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d rows.\n", cleared)
			return nil
		},
	}
}

type insightsGroupJSON struct {
	Name     string             `json:"name"`
	Members  []string           `json:"members"`
	Centroid map[string]float64 `json:"centroid"`
}

type insightsResult struct {
	Groups   []insightsGroupJSON `json:"groups"`
	Outliers []string            `json:"outliers,omitempty"`
}

func newCatalogInsightsCommand(ctx *commandContext) *cobra.Command {
	var (
		groups       int
		minGroupSize int
	)
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Group cached feature records into sound-alike clusters",
		Long: "Insights clusters the cached feature records by their descriptor axes\n" +
			"and reports each group's centroid, a quick read on how the library\n" +
			"covers the emotional range.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := queryLogger(ctx)
			if err != nil {
				return err
			}
			icfg := insights.Config{Groups: cfg.Insights.Groups, MinGroupSize: cfg.Insights.MinGroupSize}
			if groups > 0 {
				icfg.Groups = groups
			}
			if minGroupSize > 0 {
				icfg.MinGroupSize = minGroupSize
			}
			cache := featurecache.New(cfg.Paths.FeaturesPath, logger)
			records := cache.List()
			grouped, outliers := insights.GroupCandidates(records, icfg, logger)
			if ctx.JSONMode() {
				result := insightsResult{Groups: make([]insightsGroupJSON, 0, len(grouped))}
				for _, g := range grouped {
					members := make([]string, 0, len(g.Members))
					for _, rec := range g.Members {
						members = append(members, rec.Name)
					}
					result.Groups = append(result.Groups, insightsGroupJSON{
						Name:     g.Name,
						Members:  members,
						Centroid: g.Centroid,
					})
				}
				for _, rec := range outliers {
					result.Outliers = append(result.Outliers, rec.Name)
				}
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if len(grouped) == 0 {
				fmt.Fprintf(out, "Not enough cached records to group (%d cached); run 'attune extract'.\n", len(records))
				return nil
			}
			headers := []string{"Group", "Members"}
			aligns := []columnAlignment{alignLeft, alignRight}
			for axis := 0; axis < descriptor.Axes; axis++ {
				headers = append(headers, descriptor.AxisName(axis))
				aligns = append(aligns, alignRight)
			}
			rows := make([][]string, 0, len(grouped))
			for _, g := range grouped {
				row := []string{g.Name, strconv.Itoa(len(g.Members))}
				for axis := 0; axis < descriptor.Axes; axis++ {
					row = append(row, fmt.Sprintf("%.2f", g.Centroid[descriptor.AxisName(axis)]))
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			if len(outliers) > 0 {
				fmt.Fprintf(out, "%d records did not fit any group.\n", len(outliers))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&groups, "groups", 0, "number of clusters to form")
	cmd.Flags().IntVar(&minGroupSize, "min-group-size", 0, "smallest cluster worth reporting")
	return cmd
}

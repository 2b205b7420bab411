package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"attune/internal/segmenter"
)

type segmentRunSummary struct {
	Sources  int           `json:"sources"`
	Segments int           `json:"segments"`
	Failed   []scanFailure `json:"failed,omitempty"`
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var (
		leadOnly  bool
		force     bool
		durations []int
	)
	cmd := &cobra.Command{
		Use:   "segment [sources...]",
		Short: "Cut library sources into fixed-duration segments",
		Long: "Segment cuts each source into the configured duration ladder with\n" +
			"ffmpeg stream copy and registers every piece in the catalog. With no\n" +
			"arguments it walks the whole media library.",
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

			store, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			seg, err := buildSegmenter(cfg, store, logger, durations)
			if err != nil {
				return err
			}
			opts := segmenter.RunOptions{LeadOnly: leadOnly, Force: force}

			if len(args) == 0 {
				result, err := seg.SegmentLibrary(cmd.Context(), cfg.Paths.LibraryDir, opts)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]int{
						"sources":  result.Sources,
						"segments": result.Segments,
						"failed":   result.Failed,
					})
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Sources", statusInfo,
					fmt.Sprintf("%d under %s", result.Sources, cfg.Paths.LibraryDir), colorize))
				fmt.Fprintln(out, renderStatusLine("Segments", statusOK,
					fmt.Sprintf("%d cut", result.Segments), colorize))
				if result.Failed > 0 {
					fmt.Fprintln(out, renderStatusLine("Failed", statusWarn,
						fmt.Sprintf("%d sources; see the run log", result.Failed), colorize))
				}
				return nil
			}

			summary := segmentRunSummary{Sources: len(args)}
			for _, source := range args {
				pieces, err := seg.SegmentFile(cmd.Context(), source, opts)
				if err != nil {
					summary.Failed = append(summary.Failed, scanFailure{Path: source, Error: err.Error()})
					continue
				}
				summary.Segments += len(pieces)
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Segments", statusOK,
				fmt.Sprintf("%d cut from %d sources", summary.Segments, summary.Sources), colorize))
			for _, fail := range summary.Failed {
				fmt.Fprintln(out, renderStatusLine("Failed", statusWarn,
					fmt.Sprintf("%s: %s", filepath.Base(fail.Path), fail.Error), colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&leadOnly, "lead-only", false, "cut only the leading segment per duration")
	cmd.Flags().BoolVar(&force, "force", false, "re-cut segments that already exist on disk")
	cmd.Flags().IntSliceVar(&durations, "durations", nil, "segment durations in minutes")
	return cmd
}

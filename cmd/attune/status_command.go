package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"attune/internal/preflight"
	"attune/internal/retrieval"
)

type statusCheckJSON struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type statusReport struct {
	Healthy   bool              `json:"healthy"`
	Checks    []statusCheckJSON `json:"checks"`
	Retrieval retrieval.Stats   `json:"retrieval"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check runtime prerequisites and retrieval coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			results := preflight.RunAll(cmd.Context(), cfg)
			logger, err := queryLogger(ctx)
			if err != nil {
				return err
			}
			engine, _, _, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			stats := engine.Stats()

			if ctx.JSONMode() {
				report := statusReport{
					Healthy:   !preflight.Failed(results),
					Checks:    make([]statusCheckJSON, 0, len(results)),
					Retrieval: stats,
				}
				for _, res := range results {
					report.Checks = append(report.Checks, statusCheckJSON{
						Name:     res.Name,
						Passed:   res.Passed,
						Optional: res.Optional,
						Detail:   res.Detail,
					})
				}
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Runtime checks", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, res := range results {
				kind := statusError
				switch {
				case res.Passed:
					kind = statusOK
				case res.Optional:
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(res.Name, kind, res.Detail, colorize))
			}
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Retrieval coverage", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Candidates", statusInfo,
				fmt.Sprintf("%d cached feature records", stats.Candidates), colorize))
			fmt.Fprintln(out, renderStatusLine("Emotions", statusInfo,
				fmt.Sprintf("%d ISO templates", stats.Emotions), colorize))
			fmt.Fprintln(out, renderStatusLine("Top-K", statusInfo, strconv.Itoa(stats.TopK), colorize))
			fmt.Fprintln(out, renderStatusLine("Similarity floor", statusInfo,
				formatScore(stats.MinSimilarity), colorize))
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"attune/internal/emotion"
	"attune/internal/retrieval"
)

type rankEntry struct {
	SegmentName string  `json:"video_name"`
	SegmentPath string  `json:"video_path"`
	Score       float64 `json:"similarity_score"`
	Provenance  string  `json:"provenance"`
	Duration    float64 `json:"duration_seconds,omitempty"`
}

type rankResult struct {
	Emotion    string          `json:"emotion"`
	Confidence float64         `json:"confidence"`
	Stats      retrieval.Stats `json:"stats"`
	Matches    []rankEntry     `json:"matches"`
}

func newRankCommand(ctx *commandContext) *cobra.Command {
	var (
		emotionFlag string
		topK        int
	)
	cmd := &cobra.Command{
		Use:   "rank [feeling...]",
		Short: "Rank cached segments against an emotion's match stage",
		Long: "Rank scores every cached feature record against the match-stage template\n" +
			"for the given emotion and lists the leading candidates. Unlike select it\n" +
			"never records history and shows the whole ranking, not one sampled pick.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := queryLogger(ctx)
			if err != nil {
				return err
			}
			engine, _, store, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(emotionFlag)
			confidence := 1.0
			if name == "" {
				if len(args) == 0 {
					return errors.New("describe a feeling or pass --emotion")
				}
				name, confidence = emotion.NewClassifier(logger).Classify(strings.Join(args, " "))
			}
			info := store.MatchStage(name)
			matches := engine.Rank(info.Emotion, topK)
			if ctx.JSONMode() {
				entries := make([]rankEntry, 0, len(matches))
				for _, m := range matches {
					entry := rankEntry{
						SegmentName: m.Record.Name,
						SegmentPath: m.Record.Path,
						Score:       m.Score,
						Provenance:  string(m.Record.Provenance),
					}
					if m.Record.Statistical != nil {
						entry.Duration = m.Record.Statistical.Duration
					}
					entries = append(entries, entry)
				}
				return writeJSON(cmd, rankResult{
					Emotion:    info.Emotion,
					Confidence: confidence,
					Stats:      engine.Stats(),
					Matches:    entries,
				})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			stats := engine.Stats()
			fmt.Fprintln(out, renderStatusLine("Emotion", statusInfo,
				fmt.Sprintf("%s (%s confidence)", info.Emotion, formatConfidence(confidence)), colorize))
			fmt.Fprintln(out, renderStatusLine("Candidates", statusInfo,
				fmt.Sprintf("%d cached, %d ranked", stats.Candidates, len(matches)), colorize))
			if len(matches) == 0 {
				fmt.Fprintln(out, "No segment cleared the similarity floor.")
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for i, m := range matches {
				duration := "-"
				if m.Record.Statistical != nil {
					duration = formatSeconds(m.Record.Statistical.Duration)
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					m.Record.Name,
					formatScore(m.Score),
					duration,
					string(m.Record.Provenance),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Segment", "Score", "Duration", "Provenance"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&emotionFlag, "emotion", "", "rank for this emotion instead of classifying text")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of candidates to list")
	return cmd
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"attune/internal/templates"
	"attune/internal/therapy"
)

type selectionEnvelope struct {
	Matched   bool               `json:"matched"`
	Selection *therapy.Selection `json:"selection,omitempty"`
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	var (
		emotionFlag string
		topK        int
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "select [feeling...]",
		Short: "Select a therapy segment for an emotional state",
		Long: "Select classifies the described feeling, loads the matching ISO template,\n" +
			"and picks a media segment whose leading window fits the match stage.\n" +
			"With no arguments it starts an interactive session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			logger, err := queryLogger(ctx)
			if err != nil {
				return err
			}
			selector, err := buildSelector(cfg, logger, topK)
			if err != nil {
				return err
			}
			if interactive || (len(args) == 0 && emotionFlag == "") {
				if ctx.JSONMode() {
					return errors.New("interactive mode does not support --json")
				}
				return runSelectSession(cmd, selector)
			}
			var sel *therapy.Selection
			if emotionFlag != "" {
				sel, err = selector.SelectForEmotion(emotionFlag, 1)
			} else {
				sel, err = selector.Select(strings.Join(args, " "))
			}
			if err != nil {
				return err
			}
			return emitSelection(cmd, ctx, sel)
		},
	}
	cmd.Flags().StringVar(&emotionFlag, "emotion", "", "skip text classification and select for this emotion")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of leading candidates to sample from")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive selection session")
	return cmd
}

func emitSelection(cmd *cobra.Command, ctx *commandContext, sel *therapy.Selection) error {
	if ctx.JSONMode() {
		return writeJSON(cmd, selectionEnvelope{Matched: sel != nil, Selection: sel})
	}
	out := cmd.OutOrStdout()
	if sel == nil {
		fmt.Fprintln(out, "No segment cleared the similarity floor.")
		fmt.Fprintln(out, "Extract more of the library with 'attune extract' or lower scoring.min_similarity.")
		return nil
	}
	renderSelection(out, sel, shouldColorize(out))
	return nil
}

func renderSelection(w io.Writer, sel *therapy.Selection, colorize bool) {
	for _, line := range renderSectionHeader("Therapy selection", colorize) {
		fmt.Fprintln(w, line)
	}
	rows := []struct {
		label string
		value string
	}{
		{"Emotion", fmt.Sprintf("%s (%s confidence)", sel.Emotion, formatConfidence(sel.Confidence))},
		{"Segment", sel.SegmentName},
		{"Path", sel.SegmentPath},
		{"Similarity", formatScore(sel.Score)},
		{"Duration", formatSeconds(sel.Duration)},
		{"Stage", fmt.Sprintf("%s (leading %.0f%% window)", sel.Stage, sel.StageRatio*100)},
	}
	for _, row := range rows {
		fmt.Fprintln(w, renderStatusLine(row.label, statusInfo, row.value, colorize))
	}
	fmt.Fprintln(w)
	for _, line := range renderSectionHeader("Therapy arc", colorize) {
		fmt.Fprintln(w, line)
	}
	stages := []struct {
		name  string
		stage templates.Stage
	}{
		{"Match", sel.Template.Match},
		{"Guide", sel.Template.Guide},
		{"Target", sel.Template.Target},
	}
	for _, st := range stages {
		fmt.Fprintln(w, renderStatusLine(st.name, statusInfo, describeStage(st.stage), colorize))
	}
}

func describeStage(st templates.Stage) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{st.Tempo, st.Dynamics, st.Mood} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "; ")
}

func renderHistory(w io.Writer, history []therapy.Selection) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No selections recorded in this session.")
		return
	}
	rows := make([][]string, 0, len(history))
	for i, sel := range history {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			sel.SelectedAt.Format("15:04:05"),
			sel.Emotion,
			sel.SegmentName,
			formatScore(sel.Score),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Time", "Emotion", "Segment", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
}

// runSelectSession drives the interactive loop. Selection errors are
// reported inline so one bad turn does not end the session.
func runSelectSession(cmd *cobra.Command, selector *therapy.Selector) error {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out, "Describe how you feel and press enter.")
	fmt.Fprintln(out, "Commands: history, clear, quit")
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "history":
			renderHistory(out, selector.History())
			continue
		case "clear":
			selector.ClearHistory()
			fmt.Fprintln(out, "Session history cleared.")
			continue
		}
		sel, err := selector.Select(input)
		if err != nil {
			fmt.Fprintln(out, renderStatusLine("Selection", statusError, err.Error(), colorize))
			continue
		}
		if sel == nil {
			fmt.Fprintln(out, "No segment matched that state; try another description or run 'attune extract'.")
			continue
		}
		renderSelection(out, sel, colorize)
		fmt.Fprintln(out)
	}
}

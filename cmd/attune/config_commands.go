package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"attune/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage attune configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(ctx),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return cmd
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(*ctx.configFlag)
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			} else {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return err
				}
				path = expanded
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s; pass --force to overwrite", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration file for problems",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"path":   path,
					"exists": exists,
					"valid":  true,
				})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if exists {
				fmt.Fprintln(out, renderStatusLine("Config", statusOK, path, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config", statusWarn,
					fmt.Sprintf("no file at %s; using defaults", path), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Library", statusInfo, cfg.Paths.LibraryDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Segments", statusInfo, cfg.Paths.SegmentsDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Provider", statusInfo, providerSummary(cfg), colorize))
			return nil
		},
	}
}

func providerSummary(cfg *config.Config) string {
	if !cfg.Provider.Enabled {
		return "disabled (statistical features only)"
	}
	return fmt.Sprintf("%s (model %s)", cfg.Provider.URL, cfg.Provider.Model)
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration as TOML",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return err
			}
			shown := *cfg
			if shown.Provider.APIKey != "" {
				shown.Provider.APIKey = "<redacted>"
			}
			data, err := toml.Marshal(shown)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

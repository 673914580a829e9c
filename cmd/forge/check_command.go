package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"forge/internal/preflight"
	"forge/internal/textutil"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify configuration and directory access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
				return preflight.Err(results)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Configuration", colorize))
			configLine := ctx.configPath
			if !ctx.configExists {
				configLine += " (not found, using defaults)"
			}
			printLines(out, []string{
				renderStatusLine("Config", statusInfo, configLine, colorize),
				renderStatusLine("Index", statusInfo, yesNo(cfg.Build.WriteIndex), colorize),
				renderStatusLine("History", statusInfo, cfg.HistoryPath(), colorize),
			})
			fmt.Fprintln(out)

			printLines(out, renderSectionHeader("Directories", colorize))
			for _, result := range results {
				kind := textutil.Ternary(result.Passed, statusOK, statusError)
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			return preflight.Err(results)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output check results as JSON")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"forge/internal/history"
)

type runDetailJSON struct {
	Run       *history.Run       `json:"run"`
	Artifacts []history.Artifact `json:"artifacts"`
	Errors    []history.RunError `json:"errors"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No builds recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunTable(runs))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output runs as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show artifacts and failures for one build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, history.ErrRunNotFound) {
						return fmt.Errorf("no build matches %q", args[0])
					}
					return err
				}
				artifacts, err := store.RunArtifacts(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				failures, err := store.RunErrors(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if jsonOut {
					if artifacts == nil {
						artifacts = []history.Artifact{}
					}
					if failures == nil {
						failures = []history.RunError{}
					}
					return writeJSON(cmd, runDetailJSON{Run: run, Artifacts: artifacts, Errors: failures})
				}
				out := cmd.OutOrStdout()
				printRunDetail(out, run, artifacts, failures, shouldColorize(out))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the run as JSON")
	return cmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func renderRunTable(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			string(run.Status),
			formatTimestamp(run.StartedAt),
			formatDuration(run.Duration()),
			strconv.Itoa(run.InputCount),
			strconv.Itoa(run.ArtifactCount),
			strconv.Itoa(run.ErrorCount),
			run.OutputDir,
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Started", "Duration", "Inputs", "Artifacts", "Errors", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func runStatusKind(status history.Status) statusKind {
	switch status {
	case history.StatusCompleted:
		return statusOK
	case history.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func printRunDetail(out io.Writer, run *history.Run, artifacts []history.Artifact, failures []history.RunError, colorize bool) {
	printLines(out, renderSectionHeader("Build "+run.ID, colorize))
	lines := []string{
		renderStatusLine("Status", runStatusKind(run.Status), string(run.Status), colorize),
		renderStatusLine("Started", statusInfo, formatTimestamp(run.StartedAt), colorize),
		renderStatusLine("Duration", statusInfo, formatDuration(run.Duration()), colorize),
		renderStatusLine("Input", statusInfo, run.InputDir, colorize),
		renderStatusLine("Output", statusInfo, run.OutputDir, colorize),
	}
	if run.InputFilter != "" {
		lines = append(lines, renderStatusLine("Filter", statusInfo, run.InputFilter, colorize))
	}
	if run.ErrorMessage != "" {
		lines = append(lines, renderStatusLine("Failure", statusError, run.ErrorMessage, colorize))
	}
	if run.LogPath != "" {
		lines = append(lines, renderStatusLine("Log", statusInfo, run.LogPath, colorize))
	}
	printLines(out, lines)

	if len(artifacts) > 0 {
		rows := make([][]string, 0, len(artifacts))
		for _, artifact := range artifacts {
			rows = append(rows, []string{artifact.Name, artifact.Type, joinOrDash(artifact.Tags), artifact.Source})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Name", "Type", "Tags", "Source"}, rows, nil))
	}
	if len(failures) > 0 {
		rows := make([][]string, 0, len(failures))
		for _, failure := range failures {
			rows = append(rows, []string{string(failure.Kind), failure.FailureKind, failure.Location, failure.Message})
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable([]string{"Kind", "Class", "Location", "Message"}, rows, nil))
	}
}

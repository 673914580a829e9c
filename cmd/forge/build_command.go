package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"forge/internal/asseturl"
	"forge/internal/build"
	"forge/internal/config"
	"forge/internal/pipelines"
)

type buildJSON struct {
	build.Result
	Errors     []string `json:"errors"`
	DurationMS int64    `json:"duration_ms"`
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		filter    string
		filesFrom string
		jsonOut   bool
		noIndex   bool
	)

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Run every pipeline declared under the input directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.buildConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if cfg.Paths.InputDir, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve input dir: %w", err)
				}
			}
			if strings.TrimSpace(outputDir) != "" {
				if cfg.Paths.OutputDir, err = config.ExpandPath(outputDir); err != nil {
					return fmt.Errorf("resolve output dir: %w", err)
				}
			}
			if cmd.Flags().Changed("filter") {
				cfg.Build.InputFilter = strings.TrimSpace(filter)
			}
			if noIndex {
				cfg.Build.WriteIndex = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var files []asseturl.URL
			if strings.TrimSpace(filesFrom) != "" {
				listPath, err := config.ExpandPath(filesFrom)
				if err != nil {
					return fmt.Errorf("resolve file list: %w", err)
				}
				if files, err = build.ReadFileList(listPath); err != nil {
					return err
				}
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			opts := build.Options{Files: files, Logger: logger}
			if !jsonOut {
				opts.Reporter = &progressReporter{out: stderr, colorize: shouldColorize(stderr)}
			}

			result, runErr := build.Run(cmd.Context(), cfg, opts)
			if jsonOut {
				if runErr != nil && result.RunID == "" {
					return runErr
				}
				if err := writeJSON(cmd, buildJSON{
					Result:     result,
					Errors:     errorStrings(result.Errors),
					DurationMS: result.Duration.Milliseconds(),
				}); err != nil {
					return err
				}
				return runErr
			}
			if runErr != nil {
				if result.RunID != "" {
					fmt.Fprintln(stderr, renderStatusLine("Run", statusError, result.RunID, shouldColorize(stderr)))
				}
				return runErr
			}
			printBuildSummary(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	cmd.Flags().StringVar(&filter, "filter", "", "Only process input locations containing this substring")
	cmd.Flags().StringVar(&filesFrom, "files-from", "", "Read input locations from a file instead of walking the input directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the build result as JSON")
	cmd.Flags().BoolVar(&noIndex, "no-index", false, "Skip writing assets.json")
	return cmd
}

// progressReporter prints pipeline progress and isolated failures as they occur.
type progressReporter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func (r *progressReporter) Status(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, renderStatusLine("Pipeline", statusInfo, message, r.colorize))
}

func (r *progressReporter) Error(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, renderStatusLine("Skipped", statusWarn, err.Error(), r.colorize))
}

var _ pipelines.Reporter = (*progressReporter)(nil)

func printBuildSummary(out io.Writer, result build.Result, colorize bool) {
	if len(result.Assets) > 0 {
		rows := make([][]string, 0, len(result.Assets))
		for _, asset := range result.Assets {
			source := "-"
			if asset.Source != nil {
				source = asset.Source.String()
			}
			rows = append(rows, []string{asset.Name, string(asset.Type), joinOrDash(asset.Tags), source})
		}
		fmt.Fprintln(out, renderTable([]string{"Name", "Type", "Tags", "Source"}, rows, nil))
		fmt.Fprintln(out)
	}

	printLines(out, renderSectionHeader("Build", colorize))
	lines := []string{
		renderStatusLine("Run", statusInfo, result.RunID, colorize),
		renderStatusLine("Inputs", statusInfo, strconv.Itoa(result.Inputs), colorize),
		renderStatusLine("Artifacts", statusOK, fmt.Sprintf("%d (%d written, %d reused, %s)", len(result.Assets), result.Sink.Files, result.Sink.Reused, humanize.Bytes(uint64(result.Sink.BytesWritten))), colorize),
	}
	if n := len(result.Errors); n > 0 {
		lines = append(lines, renderStatusLine("Failures", statusWarn, fmt.Sprintf("%d isolated (see forge history show %s)", n, shortID(result.RunID)), colorize))
	} else {
		lines = append(lines, renderStatusLine("Failures", statusOK, "none", colorize))
	}
	if result.IndexPath != "" {
		lines = append(lines, renderStatusLine("Index", statusInfo, result.IndexPath, colorize))
	}
	lines = append(lines,
		renderStatusLine("Log", statusInfo, result.LogPath, colorize),
		renderStatusLine("Duration", statusInfo, result.Duration.Round(time.Millisecond).String(), colorize),
	)
	printLines(out, lines)
}

package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"forge/internal/assets"
	"forge/internal/build"
	"forge/internal/config"
	"forge/internal/pipelines"
)

type manifestJSON struct {
	Manifest  string               `json:"manifest"`
	Pipelines []pipelines.Pipeline `json:"pipelines"`
}

type manifestsJSON struct {
	Manifests []manifestJSON `json:"manifests"`
	Errors    []string       `json:"errors"`
}

// errorCollector keeps reported failures for later display.
type errorCollector struct {
	mu   sync.Mutex
	errs []error
}

func (c *errorCollector) Status(context.Context, string) {}

func (c *errorCollector) Error(_ context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *errorCollector) errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.errs...)
}

func newManifestsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "manifests [dir]",
		Short: "List the manifests and pipelines declared under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.buildConfig()
			if err != nil {
				return err
			}
			root := cfg.Paths.InputDir
			if len(args) == 1 {
				if root, err = config.ExpandPath(args[0]); err != nil {
					return fmt.Errorf("resolve input dir: %w", err)
				}
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			files, err := build.CollectInputs(cmd.Context(), root, cfg.Build.IgnoreDirs)
			if err != nil {
				return err
			}
			collector := &errorCollector{}
			batch := &pipelines.ProcessContext{
				Assets:   assets.NewClient(assets.WithTimeout(cfg.HTTPTimeout()), assets.WithLogger(logger)),
				Files:    files,
				Reporter: collector,
				Logger:   logger,
			}
			var manifests []pipelines.Manifest
			for manifest := range pipelines.DiscoverManifests(cmd.Context(), batch) {
				manifests = append(manifests, manifest)
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			slices.SortFunc(manifests, func(a, b pipelines.Manifest) int {
				return strings.Compare(a.URL.String(), b.URL.String())
			})
			errs := collector.errors()

			if jsonOut {
				payload := manifestsJSON{Manifests: make([]manifestJSON, 0, len(manifests)), Errors: errorStrings(errs)}
				for _, manifest := range manifests {
					payload.Manifests = append(payload.Manifests, manifestJSON{Manifest: manifest.URL.String(), Pipelines: manifest.Pipelines})
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			if len(manifests) == 0 && len(errs) == 0 {
				fmt.Fprintf(out, "No manifests found under %s\n", root)
				return nil
			}
			if len(manifests) > 0 {
				var rows [][]string
				for _, manifest := range manifests {
					location, ok := manifest.URL.LocalPath()
					if !ok {
						location = manifest.URL.String()
					}
					for i, pipeline := range manifest.Pipelines {
						rows = append(rows, []string{
							displayPath(root, location),
							strconv.Itoa(i + 1),
							pipeline.Kind.Label(),
							yesNo(pipeline.Kind.Supported()),
							joinOrDash(pipeline.Sources),
							joinOrDash(pipeline.Tags),
						})
					}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Manifest", "#", "Type", "Supported", "Sources", "Tags"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
			}
			colorize := shouldColorize(out)
			for _, err := range errs {
				fmt.Fprintln(out, renderStatusLine("Invalid manifest", statusWarn, err.Error(), colorize))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output manifests as JSON")
	return cmd
}

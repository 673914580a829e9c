package preflight

import (
	"context"
	"fmt"
	"strings"

	"forge/internal/config"
	"forge/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config. Output, state,
// and log directories are created first so a fresh install passes.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return []Result{{Name: "Preflight", Detail: err.Error()}}
	}

	results := []Result{CheckReadableDirectory("Input directory", cfg.Paths.InputDir)}

	if err := cfg.EnsureDirectories(); err != nil {
		results = append(results, Result{Name: "Create directories", Detail: err.Error()})
	}
	results = append(results,
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	)
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err folds failing results into one configuration error, or nil when every
// check passed.
func Err(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, result := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(parts, "; "), nil)
}

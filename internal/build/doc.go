// Package build runs one complete asset build for a configuration.
//
// Run checks directories, takes an exclusive lock on the output directory,
// gathers the input list, and hands it to the pipelines core with a content
// sink rooted at the output directory. Isolated failures are logged, stored in
// build history, and returned on Result; a fatal pipeline error fails the run.
// When enabled, the produced artifacts are written to <output_dir>/assets.json.
//
// Each run gets a UUID, and its log records are mirrored as JSON into
// <log_dir>/forge-<run id>.log.
package build

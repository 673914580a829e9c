// Package services defines shared utilities consumed by the build runner, the
// pipeline engine, and the asset-access layer.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, pipeline kinds, manifest locations,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure messages
//     uniform and let callers classify failures with errors.Is.
//
// Use these helpers when wiring new components so operational behaviour (error
// reporting, observability) stays uniform across a build.
package services

// Package pipelines is the build orchestration core.
//
// A batch starts from a flat list of input locations. DiscoverManifests picks
// out pipeline.toml and pipeline.json files, decodes each into an ordered list
// of Pipeline declarations, and streams them back as they arrive.
// ProcessPipelines dispatches every declaration strictly one at a time; inside a
// dispatch ProcessFiles fans out one goroutine per matching input file. Each
// pipeline's declared tags and categories are merged into the artifacts its
// strategy produced before they are appended to the batch result.
//
// Failures come in two classes. A manifest that cannot be fetched or decoded
// (*ManifestError) and a single file whose transform fails (*FileError) are
// reported through the Reporter and skipped while the batch continues. Dispatching
// a kind without a strategy (ErrUnsupportedKind) aborts the whole batch.
//
// The Downloader, Sink, and Reporter collaborators on ProcessContext are shared
// by every in-flight transform and must tolerate concurrent calls.
package pipelines

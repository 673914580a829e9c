// Package history records build runs in a SQLite database under the state
// directory.
//
// Every `forge build` opens a run row before pipelines start, appends one row
// per isolated failure as it is reported, and closes the run with its final
// status and the full artifact list. The CLI reads the same tables for
// `forge history` and `forge history show`.
//
// The schema is versioned by schema_version. A database written by a
// different version is rejected with ErrSchemaMismatch; delete history.db to
// start over.
package history

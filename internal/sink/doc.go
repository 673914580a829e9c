// Package sink stores artifact bytes produced by pipelines under the build
// output directory.
//
// Every write lands at `<root>/<logical dir>/<stem>-<hash><ext>`, where hash is
// the first 16 hex characters of the content's SHA-256. Identical content
// written twice resolves to the same file, and distinct content never
// overwrites an earlier artifact. Writes are atomic (temp file plus rename) so
// concurrent transforms may share one Sink.
//
// Logical paths are slash-separated and must stay inside the root; absolute
// paths and ".." segments that climb out are rejected as validation errors.
package sink

// Package asseturl models absolute asset locations.
//
// Every input file, manifest, and sink-written output in a build is addressed by
// a URL: local files use the file scheme, remote inputs use http or https. The
// helpers here answer the questions the pipeline engine asks of a location (its
// extension, its file name, its path relative to a manifest) without callers
// having to care which scheme backs it.
package asseturl

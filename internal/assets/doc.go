// Package assets is the asset-access handle shared by every task in a build.
//
// A Client fetches raw bytes for file and http(s) locations and is safe for
// concurrent use by many in-flight fan-out goroutines. DownloadJSON and
// DownloadTOML decode structured documents (such as pipeline manifests) on top
// of any Downloader, so tests can substitute an in-memory implementation.
package assets

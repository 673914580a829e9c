// Package preflight provides readiness checks for the filesystem paths forge
// depends on.
//
// These checks run in two contexts:
//   - The build runner calls RunAll before touching the output directory.
//     If any check fails, the build stops with a configuration error instead
//     of reporting a failure for every input.
//   - The CLI "forge check" command renders the same results as a table.
package preflight

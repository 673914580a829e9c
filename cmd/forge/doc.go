// Package main hosts the forge CLI entrypoint and command graph.
//
// The Cobra command tree runs builds, lists the manifests an input tree
// declares, browses build history, checks directory readiness, and scaffolds
// configuration. Configuration resolution and logger setup live here so
// subcommands only translate flags into calls on the internal packages.
package main

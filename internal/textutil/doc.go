// Package textutil provides small text helpers shared by the build runner and
// CLI: display titles for identifiers and filesystem-safe path segments.
//
// Titles split CamelCase, snake_case, and kebab-case identifiers into words and
// apply Unicode title casing, so pipeline kinds such as "ScriptBundles" render
// as "Script Bundles" in status lines and tables.
package textutil

// Package cli wires together the Cobra command tree for the critique binary.
//
// It defines the root command and all subcommands (analyze, serve, reports,
// config, cache, version), binds flags, reads configuration, invokes the
// analysis pipeline, and returns deterministic exit codes for CI gating.
package cli

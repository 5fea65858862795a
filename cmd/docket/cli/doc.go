// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the docket CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/docket/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
//
// The package also provides [OpenWorkspace], the shared entry point
// for commands that operate on an issue root: it discovers the
// nearest .docket directory, loads its configuration, opens the
// record store and file index, and reconciles the index shard layout
// when the configured hash length has changed.
package cli

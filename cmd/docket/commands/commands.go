// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete docket CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docketworks/docket/cmd/docket/cli"
	indexcmd "github.com/docketworks/docket/cmd/docket/index"
	"github.com/docketworks/docket/cmd/docket/issue"
	"github.com/docketworks/docket/lib/version"
)

// Root builds and returns the complete docket CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "docket",
		Description: `Docket: issue tracking anchored to source files.

Issues live as markdown records inside the repository, indexed by the
source file they are filed against. The index is a tree of small
shard files under the issue root, so lookups touch one file no matter
how many issues exist.`,
		Subcommands: []*cli.Command{
			InitCommand(),
			issue.AddCommand(),
			issue.CloseCommand(),
			issue.ReopenCommand(),
			issue.DropCommand(),
			issue.ListCommand(),
			issue.ShowCommand(),
			issue.SearchCommand(),
			indexcmd.ScanCommand(),
			indexcmd.DoctorCommand(),
			indexcmd.MigrateCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("docket %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Create an issue root in the current repository",
				Command:     "docket init",
			},
			{
				Description: "File an issue against a source file",
				Command:     "docket add src/lexer.c --title 'Fix overflow in tokenizer'",
			},
			{
				Description: "List open issues",
				Command:     "docket list --status open",
			},
			{
				Description: "Close an issue",
				Command:     "docket close src/lexer.c 20260110_111401",
			},
			{
				Description: "Search issue text",
				Command:     "docket search tokenizer overflow",
			},
			{
				Description: "Check the index against the record store",
				Command:     "docket doctor",
			},
		},
	}
}

// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docketworks/docket/cmd/docket/cli"
)

// ScanCommand returns the "scan" command for loading the entire index.
func ScanCommand() *cli.Command {
	return &cli.Command{
		Name:    "scan",
		Summary: "Load every index shard and count entries",
		Description: `Read every shard file under the index directory and print how many
source files are indexed. A clean scan also proves that every shard
on disk parses.`,
		Usage: "docket scan",
		Examples: []cli.Example{
			{
				Description: "Count indexed source files",
				Command:     "docket scan",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			total, err := ws.Index.FullScan()
			if err != nil {
				return err
			}

			fmt.Printf("%d source files indexed\n", total)
			return nil
		},
	}
}

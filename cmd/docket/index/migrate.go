// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/config"
	"github.com/docketworks/docket/lib/fileindex"
)

// MigrateCommand returns the "migrate" command for re-sharding the
// index after a hash length change.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Summary: "Re-shard the index to the configured hash length",
		Description: `Rewrite every shard file whose name was hashed at a length other than
the configured index.hash_length. Entries are re-hashed, merged into
their new shard files, and the old files removed.

Safe to re-run: an interrupted migration leaves a mixed layout that
the next run finishes (workspace opens do the same automatically while
index.auto_migrate is on). With nothing to do, the command says so and
exits cleanly.`,
		Usage: "docket migrate",
		Examples: []cli.Example{
			{
				Description: "Re-shard after editing index.hash_length",
				Command:     "docket migrate",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			workingDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}
			root, cfg, err := cli.LocateRoot(workingDir)
			if err != nil {
				return err
			}

			report, ran, err := runMigrate(root, cfg, logger)
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(os.Stderr, "index already matches the configured hash length")
				return nil
			}

			fmt.Printf("migrated %d entries into %d shards\n", report.Entries, report.Shards)
			if report.Collisions > 0 {
				fmt.Printf("%d shards hold more than one source file\n", report.Collisions)
			}
			return nil
		},
	}
}

// runMigrate re-shards the index when the on-disk layout disagrees
// with the configured hash length. The boolean reports whether a
// migration actually ran.
func runMigrate(root string, cfg *config.Config, logger *slog.Logger) (*fileindex.MigrationReport, bool, error) {
	index, err := fileindex.New(fileindex.Config{
		Root:       root,
		HashLength: cfg.Index.HashLength,
		Logger:     logger,
	})
	if err != nil {
		return nil, false, err
	}

	needs, err := index.NeedsMigration()
	if err != nil {
		return nil, false, fmt.Errorf("checking index shard layout: %w", err)
	}
	if !needs {
		return nil, false, nil
	}

	report, err := index.Migrate()
	if err != nil {
		return nil, false, err
	}
	return report, true, nil
}

// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/fileindex"
	"github.com/docketworks/docket/lib/record"
)

// DoctorCommand returns the "doctor" command for repairing the index.
func DoctorCommand() *cli.Command {
	return &cli.Command{
		Name:    "doctor",
		Summary: "Evict index entries whose records are gone",
		Description: `Walk every shard file on disk and evict indexed records whose backing
document no longer exists, for example after a record file was deleted
by hand. Shards that lose records are rewritten; shards that lose
everything are deleted.

The check reads shard files directly, so it repairs the index even
when the cached view of a running command never saw the damage. Exits
with code 1 when anything was evicted, so scripts can tell a repair
from a clean bill of health.`,
		Usage: "docket doctor",
		Examples: []cli.Example{
			{
				Description: "Check the index against the record store",
				Command:     "docket doctor",
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
			root, _, err := cli.LocateRoot(workingDir)
			if err != nil {
				return err
			}

			report, err := runDoctor(root, logger)
			if err != nil {
				return err
			}

			fmt.Printf("checked %d records, evicted %d\n", report.Checked, report.Evicted)
			for _, id := range report.EvictedIDs {
				fmt.Printf("evicted %s\n", id)
			}
			if report.Evicted > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// runDoctor checks the index against the record store's documents.
func runDoctor(root string, logger *slog.Logger) (fileindex.IntegrityReport, error) {
	return fileindex.CheckIntegrity(root, record.Exists, logger)
}

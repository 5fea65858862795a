// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/record"
)

// DropCommand returns the "drop" command for removing an issue from
// the index and, by default, deleting its record file.
func DropCommand() *cli.Command {
	var keepRecord bool

	return &cli.Command{
		Name:    "drop",
		Summary: "Remove an issue from the index",
		Description: `Delete an issue's index entry under the given source file, flush the
change, and then delete the record file. Pass --keep-record to leave
the record file in place; the issue then no longer appears in listings
but "docket show" still finds it.

The index removal is flushed before the record file is deleted, so an
interruption can leave an unreferenced record file but never an index
entry pointing at nothing.`,
		Usage: "docket drop [flags] <source-file> <issue-id>",
		Examples: []cli.Example{
			{
				Description: "Drop an issue and its record",
				Command:     "docket drop src/lexer.c 20260110_111401",
			},
			{
				Description: "Drop from the index, keep the record file",
				Command:     "docket drop --keep-record src/lexer.c 20260110_111401",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("drop", pflag.ContinueOnError)
			flags.BoolVar(&keepRecord, "keep-record", false, "keep the record file on disk")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected 2 positional arguments, got %d\n\nUsage: docket drop [flags] <source-file> <issue-id>", len(args))
			}
			sourceFile, id := filepath.ToSlash(args[0]), args[1]

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			if err := runDrop(ws, sourceFile, id, keepRecord, logger); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%s dropped from %s\n", id, sourceFile)
			return nil
		},
	}
}

// runDrop removes the index entry, flushes, and then deletes the
// record file. The flush comes first so an interruption never leaves
// an index entry pointing at a deleted record.
func runDrop(ws *cli.Workspace, sourceFile, id string, keepRecord bool, logger *slog.Logger) error {
	if err := ws.Index.Remove(sourceFile, id); err != nil {
		return err
	}
	if err := ws.Close(); err != nil {
		return err
	}

	if keepRecord {
		return nil
	}
	switch err := ws.Records.Delete(id); {
	case errors.Is(err, record.ErrNotFound):
		logger.Warn("record file already absent", "id", id)
	case err != nil:
		return err
	}
	return nil
}

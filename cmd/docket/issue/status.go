// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/fileindex"
)

// CloseCommand returns the "close" command.
func CloseCommand() *cli.Command {
	return &cli.Command{
		Name:    "close",
		Summary: "Mark an indexed issue closed",
		Description: `Set an issue's status to "closed" in the file index. The record file
is untouched; only the index entry changes.

The transition is lazy in the index cache and is flushed to the shard
file before the command exits.`,
		Usage: "docket close <source-file> <issue-id>",
		Examples: []cli.Example{
			{
				Description: "Close an issue",
				Command:     "docket close src/lexer.c 20260110_111401",
			},
		},
		Run: transitionRunner("close", fileindex.StatusClosed, "closed"),
	}
}

// ReopenCommand returns the "reopen" command.
func ReopenCommand() *cli.Command {
	return &cli.Command{
		Name:    "reopen",
		Summary: "Reopen a closed issue",
		Description: `Set an issue's status back to "open" in the file index, undoing a
prior close. The record file is untouched.`,
		Usage: "docket reopen <source-file> <issue-id>",
		Examples: []cli.Example{
			{
				Description: "Reopen an issue",
				Command:     "docket reopen src/lexer.c 20260110_111401",
			},
		},
		Run: transitionRunner("reopen", fileindex.StatusOpen, "reopened"),
	}
}

// transitionRunner builds the run closure shared by close and reopen:
// both are a single status transition followed by a flush.
func transitionRunner(name string, target fileindex.Status, verb string) func(context.Context, []string, *slog.Logger) error {
	return func(ctx context.Context, args []string, logger *slog.Logger) error {
		if len(args) != 2 {
			return fmt.Errorf("expected 2 positional arguments, got %d\n\nUsage: docket %s <source-file> <issue-id>", len(args), name)
		}

		ws, err := cli.OpenWorkspace(logger)
		if err != nil {
			return err
		}
		id := args[1]
		if err := runTransition(ws, filepath.ToSlash(args[0]), id, target); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "%s %s\n", id, verb)
		return nil
	}
}

// runTransition applies the status change and flushes it to disk.
func runTransition(ws *cli.Workspace, sourceFile, id string, target fileindex.Status) error {
	if err := ws.Index.Transition(sourceFile, id, target); err != nil {
		return err
	}
	return ws.Close()
}

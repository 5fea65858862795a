// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/docketworks/docket/cmd/docket/cli"
)

// AddCommand returns the "add" command for creating an issue record
// and registering it in the file index.
func AddCommand() *cli.Command {
	var (
		title   string
		message string
	)

	return &cli.Command{
		Name:    "add",
		Summary: "File a new issue against a source file",
		Description: `Create an issue record and register it in the file index under the
given source file path. The record ID is derived from the creation
time and printed on success.

The index write is write-through: by the time the ID prints, both the
record file and the shard file are on disk. If the index write fails,
the record file is removed again so the two stores stay consistent.`,
		Usage: "docket add [flags] <source-file>",
		Examples: []cli.Example{
			{
				Description: "File an issue with a title only",
				Command:     "docket add src/lexer.c --title 'Fix overflow in tokenizer'",
			},
			{
				Description: "File an issue with a full description",
				Command:     "docket add src/parser.c --title 'Nested parens mis-parse' --message 'Fails on ((a))'",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("add", pflag.ContinueOnError)
			flags.StringVarP(&title, "title", "t", "", "issue title (required)")
			flags.StringVarP(&message, "message", "m", "", "issue body in markdown")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nUsage: docket add [flags] <source-file>", len(args))
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			id, err := runAdd(ws, filepath.ToSlash(args[0]), title, message, logger)
			if err != nil {
				return err
			}

			fmt.Println(id)
			return nil
		},
	}
}

// runAdd creates the record and registers it in the index. Index keys
// use forward slashes regardless of platform, so callers normalize
// sourceFile first.
func runAdd(ws *cli.Workspace, sourceFile, title, message string, logger *slog.Logger) (string, error) {
	doc, err := ws.Records.Create(title, sourceFile, message)
	if err != nil {
		return "", err
	}
	if err := ws.Index.Create(sourceFile, doc.ID); err != nil {
		// The index rolled its cache back; remove the record file
		// too so no orphan survives the failure.
		if removeErr := ws.Records.Delete(doc.ID); removeErr != nil {
			logger.Error("orphaned record after index failure", "id", doc.ID, "error", removeErr)
		}
		return "", err
	}
	return doc.ID, nil
}

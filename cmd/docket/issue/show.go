// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/docketworks/docket/cmd/docket/cli"
)

// ShowCommand returns the "show" command for printing a record
// document verbatim.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:    "show",
		Summary: "Print an issue record",
		Description: `Print the full markdown document for an issue record, exactly as
stored on disk.`,
		Usage: "docket show <issue-id>",
		Examples: []cli.Example{
			{
				Description: "Show an issue record",
				Command:     "docket show 20260110_111401",
			},
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nUsage: docket show <issue-id>", len(args))
			}

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			doc, err := ws.Records.Read(args[0])
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(doc.Raw)
			return err
		},
	}
}

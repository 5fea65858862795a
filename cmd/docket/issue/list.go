// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/fileindex"
)

// ListCommand returns the "list" command. Without arguments it scans
// the whole index; with a source file it lists that file's issues.
func ListCommand() *cli.Command {
	var statusFilter string

	return &cli.Command{
		Name:    "list",
		Summary: "List indexed issues",
		Description: `List issues from the file index, joined with record titles. With no
arguments, every shard file is scanned. With a source file argument,
only that file's entry is loaded.

Issues print sorted by source file, then by ID. Record IDs encode
their creation time, so per-file order is chronological.`,
		Usage: "docket list [flags] [source-file]",
		Examples: []cli.Example{
			{
				Description: "List every indexed issue",
				Command:     "docket list",
			},
			{
				Description: "List open issues for one file",
				Command:     "docket list src/lexer.c --status open",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVarP(&statusFilter, "status", "s", "", "only show issues with this status (open or closed)")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return fmt.Errorf("expected at most 1 positional argument, got %d\n\nUsage: docket list [flags] [source-file]", len(args))
			}

			var filter fileindex.Status
			switch statusFilter {
			case "":
			case "open":
				filter = fileindex.StatusOpen
			case "closed":
				filter = fileindex.StatusClosed
			default:
				return fmt.Errorf("invalid --status %q (want open or closed)", statusFilter)
			}

			key := ""
			if len(args) == 1 {
				key = filepath.ToSlash(args[0])
			}

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			rows, err := listRows(ws, key, filter)
			if err != nil {
				return err
			}

			if len(rows) == 0 {
				fmt.Fprintln(os.Stderr, "no issues found")
				return nil
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ID\tSTATUS\tFILE\tTITLE\n")
			for _, row := range rows {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", row.ID, row.Status, row.Key, row.Title)
			}
			return writer.Flush()
		},
	}
}

// listRow is one line of list output.
type listRow struct {
	ID     string
	Status fileindex.Status
	Key    string
	Title  string
}

// listRows collects list output rows sorted by source file, then ID.
// A non-empty key narrows the listing to that source file; a
// non-empty filter narrows it to one status.
func listRows(ws *cli.Workspace, key string, filter fileindex.Status) ([]listRow, error) {
	var entries []fileindex.Entry
	if key != "" {
		entry, ok, err := ws.Index.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	} else {
		if _, err := ws.Index.FullScan(); err != nil {
			return nil, err
		}
		all := ws.Index.AllEntries()
		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, all[k])
		}
	}

	var rows []listRow
	for _, entry := range entries {
		ids := make([]string, 0, len(entry.Records))
		for id := range entry.Records {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			status := entry.Records[id]
			if filter != "" && status != filter {
				continue
			}
			// A missing record leaves the title blank; docket doctor
			// repairs dangling entries.
			title := ""
			if doc, err := ws.Records.Read(id); err == nil {
				title = doc.Title
			}
			rows = append(rows, listRow{ID: id, Status: status, Key: entry.Key, Title: title})
		}
	}
	return rows, nil
}

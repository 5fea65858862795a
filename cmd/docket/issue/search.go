// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/bm25"
	"github.com/docketworks/docket/lib/record"
)

// SearchCommand returns the "search" command for ranking issue records
// against a free-text query.
func SearchCommand() *cli.Command {
	var limit int

	return &cli.Command{
		Name:    "search",
		Summary: "Search issue records by text",
		Description: `Rank every issue record against a free-text query using BM25 and
print the best matches. Titles weigh more than body text, and source
file paths are searchable ("lexer" finds issues filed against
src/lexer.c).

Multiple arguments are joined into a single query, so quoting is
optional.`,
		Usage: "docket search [flags] <query>...",
		Examples: []cli.Example{
			{
				Description: "Search by keyword",
				Command:     "docket search overflow",
			},
			{
				Description: "Multi-word query, top 3 matches",
				Command:     "docket search --limit 3 tokenizer crash",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("search", pflag.ContinueOnError)
			flags.IntVarP(&limit, "limit", "n", 10, "maximum number of matches to print")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("query is required\n\nUsage: docket search [flags] <query>...")
			}
			query := strings.Join(args, " ")

			ws, err := cli.OpenWorkspace(logger)
			if err != nil {
				return err
			}
			docs, err := ws.Records.List()
			if err != nil {
				return err
			}

			matches := bm25.New(docs).Rank(query, limit)
			if len(matches) == 0 {
				fmt.Fprintln(os.Stderr, "no matches")
				return nil
			}

			byID := make(map[string]record.Document, len(docs))
			for _, doc := range docs {
				byID[doc.ID] = doc
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ID\tSCORE\tFILE\tTITLE\n")
			for _, match := range matches {
				doc := byID[match.ID]
				fmt.Fprintf(writer, "%s\t%.2f\t%s\t%s\n", match.ID, match.Score, doc.SourceFile, doc.Title)
			}
			return writer.Flush()
		},
	}
}

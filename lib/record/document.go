// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Time layouts for record IDs and the Created header line. Both are
// rendered in UTC.
const (
	IDLayout      = "20060102_150405"
	createdLayout = "2006-01-02 15:04:05"
)

// Document is one issue record.
type Document struct {
	// ID is the record's timestamp identifier, also its filename stem.
	ID string

	// Title is the first level-1 heading, empty when the document has
	// none.
	Title string

	// SourceFile is the source path this record is anchored to, from
	// the "File:" header line.
	SourceFile string

	// Created is the creation time from the "Created:" header line,
	// zero when absent or unparseable.
	Created time.Time

	// Raw is the full markdown source.
	Raw []byte
}

// markdownParser is initialized once and reused. The configuration
// never changes and the goldmark parser is safe to share: parsing
// creates per-call state via Parse(reader).
var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New()
	})
	return markdownParser
}

// ParseDocument decodes a record document. Structure that is missing
// leaves zero-valued fields; there is no way for a markdown file to
// fail parsing.
func ParseDocument(id string, data []byte) Document {
	doc := Document{ID: id, Raw: data}

	root := getMarkdownParser().Parser().Parse(text.NewReader(data))
	ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := node.(*ast.Heading); ok && heading.Level == 1 && doc.Title == "" {
			doc.Title = strings.TrimSpace(flattenText(heading, data))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "File:"); ok && doc.SourceFile == "" {
			doc.SourceFile = strings.TrimSpace(value)
		}
		if value, ok := strings.CutPrefix(line, "Created:"); ok && doc.Created.IsZero() {
			if stamp, err := time.Parse(createdLayout, strings.TrimSpace(value)); err == nil {
				doc.Created = stamp
			}
		}
	}
	return doc
}

// PlainText flattens the document's markdown to searchable text:
// inline markup drops away, block boundaries become spaces, code
// block content is kept.
func (d Document) PlainText() string {
	root := getMarkdownParser().Parser().Parse(text.NewReader(d.Raw))
	return strings.TrimSpace(flattenText(root, d.Raw))
}

// flattenText collects the plain text of an AST subtree. Soft and
// hard line breaks and block boundaries all become single spaces so
// word boundaries survive the flattening.
func flattenText(node ast.Node, source []byte) string {
	var out strings.Builder
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				out.WriteString(" ")
			}
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			out.Write(typed.Segment.Value(source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				out.WriteString(" ")
			}
		case *ast.String:
			out.Write(typed.Value)
		case *ast.FencedCodeBlock:
			out.WriteString(segmentsText(typed.Lines(), source))
		case *ast.CodeBlock:
			out.WriteString(segmentsText(typed.Lines(), source))
		}
		return ast.WalkContinue, nil
	})
	return out.String()
}

// segmentsText joins the raw line segments of a code block, with
// newlines normalized to spaces.
func segmentsText(lines *text.Segments, source []byte) string {
	var out strings.Builder
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		out.Write(segment.Value(source))
	}
	return strings.ReplaceAll(out.String(), "\n", " ")
}

// Compose renders the canonical document for a new record. The body
// may be empty; the header lines are always present.
func Compose(title, sourceFile string, created time.Time, body string) []byte {
	var out strings.Builder
	out.WriteString("# ")
	out.WriteString(title)
	out.WriteString("\n\n")
	out.WriteString("File: ")
	out.WriteString(sourceFile)
	out.WriteString("\n")
	out.WriteString("Created: ")
	out.WriteString(created.UTC().Format(createdLayout))
	out.WriteString("\n")
	if body = strings.TrimSpace(body); body != "" {
		out.WriteString("\n")
		out.WriteString(body)
		out.WriteString("\n")
	}
	return []byte(out.String())
}

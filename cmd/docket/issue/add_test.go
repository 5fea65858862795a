// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docketworks/docket/cmd/docket/cli"
	"github.com/docketworks/docket/lib/config"
	"github.com/docketworks/docket/lib/fileindex"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// makeWorkspace opens a workspace on a fresh issue root.
func makeWorkspace(t *testing.T) *cli.Workspace {
	t.Helper()
	projectDir := filepath.Join(t.TempDir(), "project")
	if err := os.MkdirAll(filepath.Join(projectDir, config.RootDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	ws, err := cli.OpenWorkspaceAt(projectDir, testLogger())
	if err != nil {
		t.Fatalf("OpenWorkspaceAt: %v", err)
	}
	return ws
}

func TestRunAdd(t *testing.T) {
	ws := makeWorkspace(t)

	id, err := runAdd(ws, "src/lexer.c", "Fix overflow", "Repro in test 4.", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if id == "" {
		t.Fatal("runAdd returned an empty ID")
	}

	doc, err := ws.Records.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if doc.Title != "Fix overflow" {
		t.Errorf("Title = %q, want %q", doc.Title, "Fix overflow")
	}
	if doc.SourceFile != "src/lexer.c" {
		t.Errorf("SourceFile = %q, want %q", doc.SourceFile, "src/lexer.c")
	}

	entry, ok, err := ws.Index.Get("src/lexer.c")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if entry.Records[id] != fileindex.StatusOpen {
		t.Errorf("status = %q, want open", entry.Records[id])
	}

	// Write-through: the shard file is on disk before runAdd returns.
	shard := fileindex.ShardPath(ws.Root, fileindex.HashKey("src/lexer.c", fileindex.DefaultHashLength))
	if _, err := os.Stat(shard); err != nil {
		t.Errorf("shard file after add: %v", err)
	}
}

func TestRunAdd_IndexFailureRemovesRecord(t *testing.T) {
	ws := makeWorkspace(t)

	// Occupy the index directory path with a file so every shard
	// access fails.
	if err := os.WriteFile(filepath.Join(ws.Root, ".index"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runAdd(ws, "src/lexer.c", "Fix overflow", "", testLogger()); err == nil {
		t.Fatal("runAdd succeeded with an unwritable index")
	}

	docs, err := ws.Records.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("records after failed add = %d, want 0", len(docs))
	}
}

func TestAddCommand_Validation(t *testing.T) {
	ctx := context.Background()

	err := AddCommand().Execute(ctx, []string{"--title", "Fix overflow"}, testLogger())
	if err == nil || !strings.Contains(err.Error(), "expected 1 positional argument") {
		t.Errorf("missing file arg: err = %v", err)
	}

	err = AddCommand().Execute(ctx, []string{"src/lexer.c"}, testLogger())
	if err == nil || !strings.Contains(err.Error(), "--title is required") {
		t.Errorf("missing title: err = %v", err)
	}
}

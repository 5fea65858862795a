// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package issue

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/docketworks/docket/lib/fileindex"
	"github.com/docketworks/docket/lib/record"
)

func TestRunDrop(t *testing.T) {
	ws := makeWorkspace(t)
	keep, err := runAdd(ws, "src/lexer.c", "Fix overflow", "", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	dropped, err := runAdd(ws, "src/lexer.c", "Stale diagnostics", "", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}

	if err := runDrop(ws, "src/lexer.c", dropped, false, testLogger()); err != nil {
		t.Fatalf("runDrop: %v", err)
	}

	if _, err := ws.Records.Read(dropped); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("dropped record read: err = %v, want ErrNotFound", err)
	}
	entry, ok, err := ws.Index.Get("src/lexer.c")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if _, present := entry.Records[dropped]; present {
		t.Error("dropped ID still indexed")
	}
	if entry.Records[keep] != fileindex.StatusOpen {
		t.Errorf("surviving record = %q, want open", entry.Records[keep])
	}
}

func TestRunDrop_LastRecordDeletesShard(t *testing.T) {
	ws := makeWorkspace(t)
	id, err := runAdd(ws, "src/lexer.c", "Fix overflow", "", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}

	if err := runDrop(ws, "src/lexer.c", id, false, testLogger()); err != nil {
		t.Fatalf("runDrop: %v", err)
	}

	if _, ok, _ := ws.Index.Get("src/lexer.c"); ok {
		t.Error("entry survived dropping its only record")
	}
	shard := fileindex.ShardPath(ws.Root, fileindex.HashKey("src/lexer.c", fileindex.DefaultHashLength))
	if _, err := os.Stat(shard); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("shard file after drop: %v, want ErrNotExist", err)
	}
}

func TestRunDrop_KeepRecord(t *testing.T) {
	ws := makeWorkspace(t)
	id, err := runAdd(ws, "src/lexer.c", "Fix overflow", "", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}

	if err := runDrop(ws, "src/lexer.c", id, true, testLogger()); err != nil {
		t.Fatalf("runDrop: %v", err)
	}

	if _, ok, _ := ws.Index.Get("src/lexer.c"); ok {
		t.Error("index entry survived drop")
	}
	if _, err := ws.Records.Read(id); err != nil {
		t.Errorf("kept record read: %v", err)
	}
}

func TestRunDrop_RecordFileAlreadyGone(t *testing.T) {
	ws := makeWorkspace(t)
	id, err := runAdd(ws, "src/lexer.c", "Fix overflow", "", testLogger())
	if err != nil {
		t.Fatalf("runAdd: %v", err)
	}
	if err := ws.Records.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The record file being gone is a warning, not a failure; the
	// index entry still has to go.
	if err := runDrop(ws, "src/lexer.c", id, false, testLogger()); err != nil {
		t.Fatalf("runDrop: %v", err)
	}
	if _, ok, _ := ws.Index.Get("src/lexer.c"); ok {
		t.Error("index entry survived drop")
	}
}

func TestRunDrop_UnindexedFile(t *testing.T) {
	ws := makeWorkspace(t)

	err := runDrop(ws, "src/missing.c", "20990101_000000", false, testLogger())
	if !errors.Is(err, fileindex.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDropCommand_Validation(t *testing.T) {
	err := DropCommand().Execute(context.Background(), []string{"src/lexer.c"}, testLogger())
	if err == nil || !strings.Contains(err.Error(), "expected 2 positional arguments") {
		t.Errorf("one arg: err = %v", err)
	}
}

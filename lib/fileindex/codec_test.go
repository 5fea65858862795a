// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"bytes"
	"reflect"
	"testing"
)

func TestParseShardTwoSections(t *testing.T) {
	data := []byte("[src/parser.c]\n" +
		"20260110_111401 = open\n" +
		"20260112_090915 = closed\n" +
		"\n" +
		"[src/lexer.c]\n" +
		"20260111_140230 = open\n")

	entries := parseShard(data)
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(entries))
	}
	parser := entries["src/parser.c"]
	if parser == nil {
		t.Fatal("missing entry for src/parser.c")
	}
	if got := parser.records["20260110_111401"]; got != StatusOpen {
		t.Errorf("record 20260110_111401 = %q, want open", got)
	}
	if got := parser.records["20260112_090915"]; got != StatusClosed {
		t.Errorf("record 20260112_090915 = %q, want closed", got)
	}
	lexer := entries["src/lexer.c"]
	if lexer == nil || len(lexer.records) != 1 {
		t.Fatalf("entry for src/lexer.c = %+v, want one record", lexer)
	}
}

func TestParseShardDropsMalformedLines(t *testing.T) {
	data := []byte("stray line before any section\n" +
		"[src/a.x]\n" +
		"20260110_111401 = open\n" +
		"no equals sign here\n" +
		" = open\n" +
		"20260110_111402 = reopened\n" +
		"[]\n" +
		"20260110_111403 = open\n")

	entries := parseShard(data)
	if len(entries) != 1 {
		t.Fatalf("parsed %d entries, want 1", len(entries))
	}
	e := entries["src/a.x"]
	if e == nil {
		t.Fatal("missing entry for src/a.x")
	}
	if len(e.records) != 1 {
		t.Fatalf("kept %d records, want 1 (malformed and unknown-status lines dropped)", len(e.records))
	}
	if got := e.records["20260110_111401"]; got != StatusOpen {
		t.Errorf("surviving record = %q, want open", got)
	}
}

func TestParseShardEmptyInput(t *testing.T) {
	if entries := parseShard(nil); len(entries) != 0 {
		t.Fatalf("parseShard(nil) = %d entries, want 0", len(entries))
	}
	if entries := parseShard([]byte("\n\n")); len(entries) != 0 {
		t.Fatalf("parseShard(blank) = %d entries, want 0", len(entries))
	}
}

func TestParseShardDropsRecordlessSections(t *testing.T) {
	data := []byte("[src/empty.c]\n\n[src/full.c]\n20260110_111401 = open\n")
	entries := parseShard(data)
	if _, ok := entries["src/empty.c"]; ok {
		t.Error("section with no records survived parsing")
	}
	if _, ok := entries["src/full.c"]; !ok {
		t.Error("section with records was dropped")
	}
}

func TestParseShardMergesDuplicateSections(t *testing.T) {
	data := []byte("[src/a.x]\n" +
		"20260110_111401 = open\n" +
		"[src/b.x]\n" +
		"20260110_111402 = open\n" +
		"[src/a.x]\n" +
		"20260110_111403 = closed\n")

	entries := parseShard(data)
	e := entries["src/a.x"]
	if e == nil || len(e.records) != 2 {
		t.Fatalf("duplicate sections did not merge: %+v", e)
	}
}

func TestSerializeShardGolden(t *testing.T) {
	entries := map[string]*entry{
		"src/a.x": {
			key:     "src/a.x",
			records: map[string]Status{"20260110_111401": StatusOpen},
		},
	}
	want := "[src/a.x]\n20260110_111401 = open\n"
	if got := string(serializeShard(entries)); got != want {
		t.Fatalf("serializeShard = %q, want %q", got, want)
	}
}

func TestSerializeShardSortsKeysAndRecords(t *testing.T) {
	entries := map[string]*entry{
		"src/b.x": {
			key:     "src/b.x",
			records: map[string]Status{"20260110_111402": StatusClosed},
		},
		"src/a.x": {
			key: "src/a.x",
			records: map[string]Status{
				"20260110_111409": StatusOpen,
				"20260110_111401": StatusOpen,
			},
		},
	}
	want := "[src/a.x]\n" +
		"20260110_111401 = open\n" +
		"20260110_111409 = open\n" +
		"\n" +
		"[src/b.x]\n" +
		"20260110_111402 = closed\n"
	first := serializeShard(entries)
	if string(first) != want {
		t.Fatalf("serializeShard = %q, want %q", first, want)
	}
	second := serializeShard(entries)
	if !bytes.Equal(first, second) {
		t.Fatal("serializeShard is not deterministic")
	}
}

func TestSerializeShardSkipsEmptyEntries(t *testing.T) {
	entries := map[string]*entry{
		"src/gone.c": {key: "src/gone.c", records: map[string]Status{}},
	}
	if got := serializeShard(entries); len(got) != 0 {
		t.Fatalf("serializeShard of record-less entries = %q, want empty", got)
	}
}

func TestShardRoundTrip(t *testing.T) {
	original := map[string]*entry{
		"src/a.x": {
			key: "src/a.x",
			records: map[string]Status{
				"20260110_111401": StatusOpen,
				"20260112_090915": StatusClosed,
			},
		},
		"docs/readme.md": {
			key:     "docs/readme.md",
			records: map[string]Status{"20260113_081144": StatusOpen},
		},
	}
	parsed := parseShard(serializeShard(original))
	if len(parsed) != len(original) {
		t.Fatalf("round trip produced %d entries, want %d", len(parsed), len(original))
	}
	for key, want := range original {
		got := parsed[key]
		if got == nil {
			t.Fatalf("round trip lost entry %q", key)
		}
		if !reflect.DeepEqual(got.records, want.records) {
			t.Errorf("entry %q records = %v, want %v", key, got.records, want.records)
		}
	}
}

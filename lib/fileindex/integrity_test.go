// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"
)

// existsIn builds an ExistsFunc from a fixed set of surviving IDs.
func existsIn(ids ...string) ExistsFunc {
	alive := make(map[string]bool, len(ids))
	for _, id := range ids {
		alive[id] = true
	}
	return func(root, recordID string) bool { return alive[recordID] }
}

func TestCheckIntegrityEvictsMissingRecords(t *testing.T) {
	root := t.TempDir()
	ix := makeIndex(t, root, 16)
	if err := ix.Create("src/a.x", "20260110_111401"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ix.Create("src/a.x", "20260112_090915"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := ix.Create("src/b.x", "20260111_140230"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	report, err := CheckIntegrity(root, existsIn("20260110_111401", "20260111_140230"), nil)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Checked != 3 {
		t.Errorf("Checked = %d, want 3", report.Checked)
	}
	if report.Evicted != 1 {
		t.Errorf("Evicted = %d, want 1", report.Evicted)
	}
	if !reflect.DeepEqual(report.EvictedIDs, []string{"20260112_090915"}) {
		t.Errorf("EvictedIDs = %v, want the missing record only", report.EvictedIDs)
	}

	// Survivors are untouched, the evicted record is gone on disk.
	fresh := makeIndex(t, root, 16)
	entry, ok, err := fresh.Get("src/a.x")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want entry", ok, err)
	}
	want := map[string]Status{"20260110_111401": StatusOpen}
	if !reflect.DeepEqual(entry.Records, want) {
		t.Errorf("records after eviction = %v, want %v", entry.Records, want)
	}
	if _, ok, _ := fresh.Get("src/b.x"); !ok {
		t.Error("unrelated entry lost during integrity check")
	}
}

func TestCheckIntegrityDeletesEmptiedShard(t *testing.T) {
	root := t.TempDir()
	ix := makeIndex(t, root, 16)
	if err := ix.Create("src/a.x", "20260110_111401"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	report, err := CheckIntegrity(root, existsIn(), nil)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Evicted != 1 {
		t.Fatalf("Evicted = %d, want 1", report.Evicted)
	}
	if _, err := os.Stat(shardFile(root, "src/a.x", 16)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("emptied shard still present: %v", err)
	}
}

func TestCheckIntegrityAllPresent(t *testing.T) {
	root := t.TempDir()
	ix := makeIndex(t, root, 16)
	if err := ix.Create("src/a.x", "20260110_111401"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := readShardFile(t, root, "src/a.x", 16)

	report, err := CheckIntegrity(root, existsIn("20260110_111401"), nil)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Checked != 1 || report.Evicted != 0 || len(report.EvictedIDs) != 0 {
		t.Fatalf("report = %+v, want 1 checked, nothing evicted", report)
	}
	if after := readShardFile(t, root, "src/a.x", 16); after != before {
		t.Fatal("clean integrity check rewrote shard content")
	}
}

func TestCheckIntegrityMissingIndexDir(t *testing.T) {
	report, err := CheckIntegrity(t.TempDir(), existsIn(), nil)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Checked != 0 || report.Evicted != 0 {
		t.Fatalf("report for missing tree = %+v, want zeros", report)
	}
}

func TestCheckIntegrityPreservesCollidingSiblings(t *testing.T) {
	root := t.TempDir()
	shard := HashKey("src/a.x", 16)
	writeShardFixture(t, ShardPath(root, shard),
		"[src/a.x]\n20260110_111401 = open\n\n[zz/other.y]\n20260111_140230 = open\n")

	report, err := CheckIntegrity(root, existsIn("20260111_140230"), nil)
	if err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}
	if report.Checked != 2 || report.Evicted != 1 {
		t.Fatalf("report = %+v, want 2 checked, 1 evicted", report)
	}

	content := readShardFile(t, root, "src/a.x", 16)
	if strings.Contains(content, "[src/a.x]") {
		t.Errorf("evicted key still serialized: %q", content)
	}
	if !strings.Contains(content, "[zz/other.y]") {
		t.Errorf("surviving sibling dropped from shard: %q", content)
	}
}

func TestCheckIntegrityIgnoresLiveCache(t *testing.T) {
	root := t.TempDir()
	ix := makeIndex(t, root, 16)
	if err := ix.Create("src/a.x", "20260110_111401"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := CheckIntegrity(root, existsIn(), nil); err != nil {
		t.Fatalf("CheckIntegrity: %v", err)
	}

	// The live cache still holds the evicted record; only a rescan
	// reconciles.
	entry, ok, err := ix.Get("src/a.x")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want stale cached entry", ok, err)
	}
	if len(entry.Records) != 1 {
		t.Fatalf("cached records = %v, want the stale one", entry.Records)
	}

	if _, err := ix.FullScan(); err != nil {
		t.Fatalf("FullScan: %v", err)
	}
	if _, ok, _ := ix.Get("src/a.x"); ok {
		t.Fatal("entry survived rescan after disk eviction")
	}
}

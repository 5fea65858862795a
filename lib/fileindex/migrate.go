// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MigrationReport summarizes a completed migration.
type MigrationReport struct {
	// Entries is the number of entries carried into the new layout.
	Entries int

	// Shards is the number of shard files written at the new length.
	Shards int

	// Collisions is the number of new shards holding more than one
	// distinct key.
	Collisions int
}

// plannedMove is one parsed entry and the old shard file it came
// from, grouped under its hash at the configured length.
type plannedMove struct {
	oldPath string
	entry   *entry
}

// NeedsMigration reports whether any shard file on disk was written
// at a hash length other than the configured one. Filename length is
// the whole signal: every hash of one generation has the same length.
func (ix *Index) NeedsMigration() (bool, error) {
	needs := false
	err := walkShards(ix.root, func(shard, path string) error {
		if len(shard) != ix.hashLength {
			needs = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return needs, nil
}

// Migrate rewrites every shard file to the configured hash length in
// two passes. The first pass only reads: it parses all shards and
// groups entries by their hash at the new length. The second pass
// writes each merged group, deletes old files not reused by the new
// layout, and prunes emptied fanout directories. The first write
// failure aborts the run with a *MigrationError; shards already
// written keep their new names, and because planning always starts
// from current disk state, re-running resumes where the failed run
// stopped. On success the cache is rebuilt from disk.
func (ix *Index) Migrate() (*MigrationReport, error) {
	plan := make(map[string][]plannedMove)
	oldPaths := make(map[string]bool)
	err := walkShards(ix.root, func(shard, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading shard %s: %w", shard, err)
		}
		oldPaths[path] = true
		for _, e := range parseShard(data) {
			target := HashKey(e.key, ix.hashLength)
			plan[target] = append(plan[target], plannedMove{oldPath: path, entry: e})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shards := make([]string, 0, len(plan))
	for shard := range plan {
		shards = append(shards, shard)
	}
	sort.Strings(shards)

	report := &MigrationReport{}
	written := make(map[string]bool)
	for _, shard := range shards {
		merged := mergeMoves(plan[shard])
		if len(merged) > 1 {
			report.Collisions++
			ix.logger.Warn("migration co-located colliding keys in one shard",
				"shard", shard, "keys", len(merged))
		}
		path := ShardPath(ix.root, shard)
		if err := ix.writeShardFile(path, serializeShard(merged)); err != nil {
			ix.logger.Error("migration aborted; shards already written keep their new names",
				"shard", shard, "error", err)
			return nil, &MigrationError{Shard: shard, Err: err}
		}
		written[path] = true
		report.Shards++
		report.Entries += len(merged)
	}

	for path := range oldPaths {
		if written[path] {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &MigrationError{Shard: filepath.Base(path), Err: err}
		}
	}
	ix.pruneEmptyFanoutDirs()

	if _, err := ix.FullScan(); err != nil {
		return nil, err
	}
	ix.logger.Info("index migrated",
		"hash_length", ix.hashLength,
		"entries", report.Entries,
		"shards", report.Shards,
		"collisions", report.Collisions)
	return report, nil
}

// mergeMoves folds all planned moves targeting one new shard into a
// single bucket. Distinct keys co-locate. The same key parsed from
// several old shards (the footprint of an earlier aborted run)
// unions its record maps, the lexically later old path winning a
// conflicting status for the same record ID. Sorting first makes
// reruns deterministic.
func mergeMoves(moves []plannedMove) map[string]*entry {
	sort.Slice(moves, func(i, j int) bool { return moves[i].oldPath < moves[j].oldPath })
	merged := make(map[string]*entry)
	for _, move := range moves {
		target, ok := merged[move.entry.key]
		if !ok {
			merged[move.entry.key] = move.entry.clone()
			continue
		}
		for id, status := range move.entry.records {
			target.records[id] = status
		}
	}
	return merged
}

// pruneEmptyFanoutDirs removes fanout subdirectories emptied by a
// migration. Best-effort.
func (ix *Index) pruneEmptyFanoutDirs() {
	dir := indexDir(ix.root)
	prefixes, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, prefix := range prefixes {
		if !prefix.IsDir() {
			continue
		}
		fanout := filepath.Join(dir, prefix.Name())
		children, err := os.ReadDir(fanout)
		if err != nil || len(children) > 0 {
			continue
		}
		os.Remove(fanout)
	}
}

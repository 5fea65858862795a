// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ExistsFunc reports whether a record's backing document still exists
// under the issue root. CheckIntegrity calls it once per indexed
// (key, record) pair.
type ExistsFunc func(root, recordID string) bool

// IntegrityReport summarizes a CheckIntegrity run.
type IntegrityReport struct {
	// Checked is the number of (key, record) pairs visited.
	Checked int

	// Evicted is the number of pairs removed because the record's
	// document is gone.
	Evicted int

	// EvictedIDs lists the evicted record IDs in walk order.
	EvictedIDs []string
}

// CheckIntegrity walks every shard file under root's index directory
// and evicts records whose backing document no longer exists
// according to exists. Shards that lose records are rewritten in
// place, or deleted when nothing survives.
//
// The check reads disk directly. State cached by a live Index is
// neither consulted nor repaired; run FullScan on any open Index
// afterward.
func CheckIntegrity(root string, exists ExistsFunc, logger *slog.Logger) (IntegrityReport, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var report IntegrityReport
	err := walkShards(root, func(shard, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading shard %s: %w", shard, err)
		}
		entries := parseShard(data)
		evictedHere := 0
		for _, key := range sortedEntryKeys(entries) {
			e := entries[key]
			for _, id := range sortedRecordIDs(e.records) {
				report.Checked++
				if exists(root, id) {
					continue
				}
				delete(e.records, id)
				report.Evicted++
				report.EvictedIDs = append(report.EvictedIDs, id)
				evictedHere++
				logger.Info("evicting index record with missing document",
					"key", key, "record", id, "shard", shard)
			}
		}
		if evictedHere == 0 {
			return nil
		}
		content := serializeShard(entries)
		if len(content) == 0 {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing emptied shard %s: %w", shard, err)
			}
			return nil
		}
		if err := atomicWriteFile(path, content); err != nil {
			return fmt.Errorf("rewriting shard %s: %w", shard, err)
		}
		return nil
	})
	return report, err
}

// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"sort"
	"strings"
)

// parseShard decodes the shard file format: one section per lookup
// key, a bracketed header line holding the original key followed by
// one "record_id = status" line per record. Malformed lines and
// unknown statuses are dropped silently: the index is derived state,
// and a partially readable shard is worth more than a parse error.
// Sections left with no surviving records are omitted; a duplicate
// section for the same key merges into the first.
func parseShard(data []byte) map[string]*entry {
	entries := make(map[string]*entry)
	var current *entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			key := line[1 : len(line)-1]
			if key == "" {
				current = nil
				continue
			}
			current = entries[key]
			if current == nil {
				current = &entry{key: key, records: make(map[string]Status)}
				entries[key] = current
			}
		default:
			if current == nil {
				continue
			}
			id, status, found := strings.Cut(line, "=")
			if !found {
				continue
			}
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			switch Status(strings.TrimSpace(status)) {
			case StatusOpen:
				current.records[id] = StatusOpen
			case StatusClosed:
				current.records[id] = StatusClosed
			}
		}
	}
	for key, e := range entries {
		if len(e.records) == 0 {
			delete(entries, key)
		}
	}
	return entries
}

// serializeShard encodes entries in the shard file format with keys
// and record IDs sorted, so equal state always produces identical
// bytes. Entries with no records are skipped; when nothing survives
// the result is empty and the caller deletes the shard file instead
// of writing it.
func serializeShard(entries map[string]*entry) []byte {
	keys := make([]string, 0, len(entries))
	for key, e := range entries {
		if len(e.records) == 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out strings.Builder
	for i, key := range keys {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString("[")
		out.WriteString(key)
		out.WriteString("]\n")
		records := entries[key].records
		for _, id := range sortedRecordIDs(records) {
			out.WriteString(id)
			out.WriteString(" = ")
			out.WriteString(string(records[id]))
			out.WriteString("\n")
		}
	}
	return []byte(out.String())
}

// sortedRecordIDs returns the record IDs of one entry in sorted
// order, for deterministic serialization and walk output.
func sortedRecordIDs(records map[string]Status) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// sortedEntryKeys returns a bucket's lookup keys in sorted order.
func sortedEntryKeys(entries map[string]*entry) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

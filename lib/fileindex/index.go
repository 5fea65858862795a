// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Status is a record's lifecycle state within the index.
type Status string

// Record lifecycle states. Anything else found in a shard file is
// treated as corrupt and dropped during parsing.
const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Entry is the indexed state for one lookup key: the record IDs
// anchored to it and each record's status. Values returned by the
// index are detached copies; mutating them never affects the cache.
type Entry struct {
	// Key is the original lookup key, normally a source file path
	// relative to the repository root.
	Key string

	// Records maps record ID to status.
	Records map[string]Status
}

// entry is the in-cache state for one lookup key. dirty marks changes
// not yet persisted to the shard file.
type entry struct {
	key     string
	records map[string]Status
	dirty   bool
}

// snapshot returns a detached copy for callers.
func (e *entry) snapshot() Entry {
	records := make(map[string]Status, len(e.records))
	for id, status := range e.records {
		records[id] = status
	}
	return Entry{Key: e.key, Records: records}
}

// clone returns a deep copy, dirty flag included. Used to checkpoint
// an entry before a write-through attempt.
func (e *entry) clone() *entry {
	records := make(map[string]Status, len(e.records))
	for id, status := range e.records {
		records[id] = status
	}
	return &entry{key: e.key, records: records, dirty: e.dirty}
}

// Config configures an Index.
type Config struct {
	// Root is the issue root directory. The index lives in its .index
	// subdirectory. Required.
	Root string

	// HashLength is the shard hash length in hex characters, clamped
	// to [MinHashLength, MaxHashLength]. Zero means DefaultHashLength.
	HashLength int

	// Logger receives collision notices, eviction reports, and
	// migration progress. Nil discards logs.
	Logger *slog.Logger
}

// Index is a durable mapping from lookup keys to indexed records,
// sharded across hash-named files and cached in memory one shard at a
// time. See the package documentation for the durability rules. Not
// safe for concurrent use.
type Index struct {
	root       string
	hashLength int
	logger     *slog.Logger

	// cache maps shard hash to bucket (key to entry). A present
	// bucket means the shard file was loaded, or found absent, this
	// session; a missing bucket says nothing about disk.
	cache map[string]map[string]*entry

	// Session notices, delivered at most once per Index.
	collisionAlerted    bool
	ignoreMarkerWritten bool
}

// Ignore marker dropped into the index directory on first write, so
// derived state stays out of version control.
const (
	ignoreMarkerName    = ".gitignore"
	ignoreMarkerContent = "*\n"
)

// New returns an Index rooted at cfg.Root. It touches no files; shard
// state loads lazily on first access. Returns ErrNotAvailable when no
// root is configured.
func New(cfg Config) (*Index, error) {
	if cfg.Root == "" {
		return nil, ErrNotAvailable
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Index{
		root:       cfg.Root,
		hashLength: clampHashLength(cfg.HashLength),
		logger:     logger,
		cache:      make(map[string]map[string]*entry),
	}, nil
}

// Get returns the entry for key. Absence is reported by the boolean,
// not an error; errors are reserved for failed shard reads.
func (ix *Index) Get(key string) (Entry, bool, error) {
	_, bucket, err := ix.bucket(key)
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := bucket[key]
	if !ok {
		return Entry{}, false, nil
	}
	return e.snapshot(), true, nil
}

// Create registers recordID under key with status open and persists
// the containing shard before returning. On a write failure the
// entry's prior cache state is restored, so cache and disk never
// disagree about a creation and a retry starts clean.
func (ix *Index) Create(key, recordID string) error {
	shard, bucket, err := ix.bucket(key)
	if err != nil {
		return err
	}

	prior, existed := bucket[key]
	var checkpoint *entry
	if existed {
		checkpoint = prior.clone()
	}

	e := prior
	if e == nil {
		e = &entry{key: key, records: make(map[string]Status)}
		bucket[key] = e
	}
	e.records[recordID] = StatusOpen
	e.dirty = true

	if err := ix.persistBucket(shard, bucket); err != nil {
		if existed {
			bucket[key] = checkpoint
		} else {
			delete(bucket, key)
		}
		return fmt.Errorf("persisting record %s under %q: %w", recordID, key, err)
	}

	ix.noteCollision(shard, bucket)
	return nil
}

// Transition sets the status of an existing record under an existing
// key. The change is cache-only until the next Flush. Returns an
// error wrapping ErrNotFound when the key or the record is not
// indexed.
func (ix *Index) Transition(key, recordID string, status Status) error {
	if status != StatusOpen && status != StatusClosed {
		return fmt.Errorf("transitioning record %s under %q: unknown status %q", recordID, key, status)
	}
	_, bucket, err := ix.bucket(key)
	if err != nil {
		return err
	}
	e, ok := bucket[key]
	if !ok {
		return fmt.Errorf("transitioning under %q: %w", key, ErrNotFound)
	}
	if _, ok := e.records[recordID]; !ok {
		return fmt.Errorf("transitioning record %s under %q: %w", recordID, key, ErrNotFound)
	}
	e.records[recordID] = status
	e.dirty = true
	return nil
}

// Remove deletes recordID from key's entry. The shard is marked dirty
// only when a record was actually removed; deleting an absent record
// is a no-op. Returns an error wrapping ErrNotFound when the key
// itself is not indexed. The deletion reaches disk on the next Flush.
func (ix *Index) Remove(key, recordID string) error {
	_, bucket, err := ix.bucket(key)
	if err != nil {
		return err
	}
	e, ok := bucket[key]
	if !ok {
		return fmt.Errorf("removing from %q: %w", key, ErrNotFound)
	}
	if _, ok := e.records[recordID]; !ok {
		return nil
	}
	delete(e.records, recordID)
	e.dirty = true
	return nil
}

// Flush persists every shard with pending lazy changes. Buckets are
// independent: one failed write does not stop the others, and all
// failures are joined into the returned error.
func (ix *Index) Flush() error {
	var errs []error
	for shard, bucket := range ix.cache {
		if !bucketDirty(bucket) {
			continue
		}
		if err := ix.persistBucket(shard, bucket); err != nil {
			errs = append(errs, fmt.Errorf("flushing shard %s: %w", shard, err))
		}
	}
	return errors.Join(errs...)
}

// FullScan discards the cache and reloads every shard file under the
// index directory, returning the number of entries indexed. A missing
// index tree yields zero. Shard filenames are trusted as shard
// hashes; keys are not re-hashed.
func (ix *Index) FullScan() (int, error) {
	cache := make(map[string]map[string]*entry)
	total := 0
	err := walkShards(ix.root, func(shard, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading shard %s: %w", shard, err)
		}
		bucket := parseShard(data)
		cache[shard] = bucket
		total += len(bucket)
		return nil
	})
	if err != nil {
		return 0, err
	}
	ix.cache = cache
	return total, nil
}

// AllEntries returns a detached copy of every cached entry, keyed by
// lookup key. Call FullScan first to see the whole index rather than
// just the shards touched so far this session.
func (ix *Index) AllEntries() map[string]Entry {
	all := make(map[string]Entry)
	for _, bucket := range ix.cache {
		for key, e := range bucket {
			all[key] = e.snapshot()
		}
	}
	return all
}

// bucket returns key's shard hash and its cached bucket, loading the
// shard file on first access. An absent file caches an empty bucket
// so repeated misses stay off the disk.
func (ix *Index) bucket(key string) (string, map[string]*entry, error) {
	shard := HashKey(key, ix.hashLength)
	if bucket, ok := ix.cache[shard]; ok {
		return shard, bucket, nil
	}
	bucket, err := ix.loadShard(shard)
	if err != nil {
		return "", nil, err
	}
	ix.cache[shard] = bucket
	return shard, bucket, nil
}

// loadShard reads and parses one shard file. A missing file is an
// empty bucket, not an error.
func (ix *Index) loadShard(shard string) (map[string]*entry, error) {
	data, err := os.ReadFile(ShardPath(ix.root, shard))
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]*entry), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading shard %s: %w", shard, err)
	}
	return parseShard(data), nil
}

// persistBucket serializes a bucket to its shard file, deleting the
// file instead when no records remain anywhere in it. On success
// every dirty flag clears and record-less entries leave the cache,
// keeping the bucket equal to what a fresh parse of the file would
// yield.
func (ix *Index) persistBucket(shard string, bucket map[string]*entry) error {
	path := ShardPath(ix.root, shard)
	data := serializeShard(bucket)
	if len(data) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing emptied shard %s: %w", shard, err)
		}
	} else {
		if err := ix.writeShardFile(path, data); err != nil {
			return err
		}
	}
	for key, e := range bucket {
		if len(e.records) == 0 {
			delete(bucket, key)
			continue
		}
		e.dirty = false
	}
	return nil
}

// writeShardFile atomically replaces one shard file, creating the
// index and fanout directories as needed.
func (ix *Index) writeShardFile(path string, data []byte) error {
	if err := ix.ensureIndexDir(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating fanout directory: %w", err)
	}
	return atomicWriteFile(path, data)
}

// ensureIndexDir creates the index directory and, the first time this
// Index writes, drops the ignore marker into it. The marker write is
// best-effort: version-control hygiene never blocks a record write.
func (ix *Index) ensureIndexDir() error {
	dir := indexDir(ix.root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if !ix.ignoreMarkerWritten {
		ix.ignoreMarkerWritten = true
		marker := filepath.Join(dir, ignoreMarkerName)
		if _, err := os.Stat(marker); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(marker, []byte(ignoreMarkerContent), 0o644); err != nil {
				ix.logger.Debug("ignore marker write failed", "path", marker, "error", err)
			}
		}
	}
	return nil
}

// noteCollision logs once per Index when a shard holds more than one
// distinct key. Colliding entries co-exist in one file, so the notice
// is informational.
func (ix *Index) noteCollision(shard string, bucket map[string]*entry) {
	if ix.collisionAlerted || len(bucket) < 2 {
		return
	}
	ix.collisionAlerted = true
	ix.logger.Warn("shard hash collision: multiple keys share one shard file",
		"shard", shard, "keys", len(bucket))
}

// bucketDirty reports whether any entry in the bucket has unpersisted
// changes.
func bucketDirty(bucket map[string]*entry) bool {
	for _, e := range bucket {
		if e.dirty {
			return true
		}
	}
	return false
}

// walkShards calls fn for every shard file under root's index
// directory, in sorted fanout and filename order. Only regular files
// inside fanout subdirectories count: the ignore marker sits at the
// top level, and temp files left by interrupted writes are skipped. A
// missing index directory is an empty walk.
func walkShards(root string, fn func(shard, path string) error) error {
	dir := indexDir(root)
	prefixes, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index directory: %w", err)
	}
	for _, prefix := range prefixes {
		if !prefix.IsDir() {
			continue
		}
		fanout := filepath.Join(dir, prefix.Name())
		files, err := os.ReadDir(fanout)
		if err != nil {
			return fmt.Errorf("reading fanout directory %s: %w", prefix.Name(), err)
		}
		for _, file := range files {
			if file.IsDir() || filepath.Ext(file.Name()) == ".tmp" {
				continue
			}
			if err := fn(file.Name(), filepath.Join(fanout, file.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// atomicWriteFile replaces path via a temp file in the same directory
// and a rename, so readers never observe a partial shard.
func atomicWriteFile(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp shard file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing shard data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp shard file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming shard file: %w", err)
	}

	success = true
	return nil
}

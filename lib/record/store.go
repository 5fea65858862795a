// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docketworks/docket/lib/clock"
)

// DirName is the records subdirectory under the issue root.
const DirName = "issues"

const (
	recordExt = ".md"

	// maxIDAttempts bounds the creation retry loop when the current
	// second's ID is taken.
	maxIDAttempts = 60
)

// ErrNotFound reports an operation against a record ID that has no
// document on disk.
var ErrNotFound = errors.New("record: not found")

// Config configures a Store.
type Config struct {
	// Root is the issue root directory. Records live in its issues
	// subdirectory. Required.
	Root string

	// Clock supplies creation timestamps. Nil means the real clock.
	Clock clock.Clock

	// Logger receives store activity. Nil discards logs.
	Logger *slog.Logger
}

// Store reads and writes record documents under one issue root. Safe
// for any number of readers; concurrent writers race on ID allocation
// and the loser retries into the next second.
type Store struct {
	root   string
	clock  clock.Clock
	logger *slog.Logger
}

// New returns a Store rooted at cfg.Root. It touches no files.
func New(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("record: Root is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{root: cfg.Root, clock: clk, logger: logger}, nil
}

// Create allocates a fresh record ID from the clock, writes the
// composed document, and returns it. When the current second's ID is
// already taken the timestamp advances one second and retries, so IDs
// stay unique without any counter state.
func (s *Store) Create(title, sourceFile, body string) (Document, error) {
	if err := os.MkdirAll(s.recordsDir(), 0o755); err != nil {
		return Document{}, fmt.Errorf("creating records directory: %w", err)
	}

	base := s.clock.Now().UTC()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		stamp := base.Add(time.Duration(attempt) * time.Second)
		id := stamp.Format(IDLayout)
		data := Compose(title, sourceFile, stamp, body)

		file, err := os.OpenFile(s.recordPath(id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return Document{}, fmt.Errorf("creating record file: %w", err)
		}
		if _, err := file.Write(data); err != nil {
			file.Close()
			os.Remove(s.recordPath(id))
			return Document{}, fmt.Errorf("writing record %s: %w", id, err)
		}
		if err := file.Close(); err != nil {
			os.Remove(s.recordPath(id))
			return Document{}, fmt.Errorf("closing record %s: %w", id, err)
		}

		s.logger.Debug("record created", "id", id, "file", sourceFile)
		return ParseDocument(id, data), nil
	}
	return Document{}, fmt.Errorf("record: no free ID within %d seconds of %s", maxIDAttempts, base.Format(IDLayout))
}

// Read loads and parses one record. Returns an error wrapping
// ErrNotFound when no document exists for the ID.
func (s *Store) Read(id string) (Document, error) {
	if !validID(id) {
		return Document{}, fmt.Errorf("reading record %q: %w", id, ErrNotFound)
	}
	data, err := os.ReadFile(s.recordPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return Document{}, fmt.Errorf("reading record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("reading record %s: %w", id, err)
	}
	return ParseDocument(id, data), nil
}

// Delete removes a record document. Returns an error wrapping
// ErrNotFound when no document exists for the ID.
func (s *Store) Delete(id string) error {
	if !validID(id) {
		return fmt.Errorf("removing record %q: %w", id, ErrNotFound)
	}
	err := os.Remove(s.recordPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing record %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("removing record %s: %w", id, err)
	}
	s.logger.Debug("record deleted", "id", id)
	return nil
}

// List loads every record document, ordered by ID (which is
// chronological by construction). A missing records directory is an
// empty list.
func (s *Store) List() ([]Document, error) {
	dirEntries, err := os.ReadDir(s.recordsDir())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading records directory: %w", err)
	}

	var docs []Document
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || filepath.Ext(name) != recordExt {
			continue
		}
		id := strings.TrimSuffix(name, recordExt)
		data, err := os.ReadFile(s.recordPath(id))
		if err != nil {
			return nil, fmt.Errorf("reading record %s: %w", id, err)
		}
		docs = append(docs, ParseDocument(id, data))
	}
	return docs, nil
}

// Exists reports whether a record document exists under root. The
// signature matches the existence oracle the index integrity checker
// expects.
func Exists(root, id string) bool {
	if !validID(id) {
		return false
	}
	info, err := os.Stat(filepath.Join(root, DirName, id+recordExt))
	return err == nil && info.Mode().IsRegular()
}

func (s *Store) recordsDir() string {
	return filepath.Join(s.root, DirName)
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.recordsDir(), id+recordExt)
}

// validID rejects names that could escape the records directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, "/\\")
}

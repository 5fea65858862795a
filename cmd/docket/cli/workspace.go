// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/docketworks/docket/lib/clock"
	"github.com/docketworks/docket/lib/config"
	"github.com/docketworks/docket/lib/fileindex"
	"github.com/docketworks/docket/lib/record"
)

// Workspace bundles an open issue root: its configuration, record
// store, and file index. Commands obtain one via OpenWorkspace and
// must call Close before returning so lazily recorded index changes
// reach disk.
type Workspace struct {
	// Root is the .docket directory path.
	Root string

	// Config is the root's loaded configuration.
	Config *config.Config

	// Records is the issue record store.
	Records *record.Store

	// Index is the source-file index.
	Index *fileindex.Index
}

// OpenWorkspace locates the issue root at or above the working
// directory and opens it. See OpenWorkspaceAt.
func OpenWorkspace(logger *slog.Logger) (*Workspace, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return OpenWorkspaceAt(workingDir, logger)
}

// OpenWorkspaceAt locates the issue root at or above dir and opens
// its configuration, record store, and file index.
//
// When the configured shard hash length no longer matches the shards
// on disk, the index is re-sharded here before the command sees it
// (the migration is idempotent, so a crash mid-way is repaired by the
// next open). With index.auto_migrate disabled, the open fails
// instead and the user must run "docket migrate".
func OpenWorkspaceAt(dir string, logger *slog.Logger) (*Workspace, error) {
	root, cfg, err := LocateRoot(dir)
	if err != nil {
		return nil, err
	}

	index, err := fileindex.New(fileindex.Config{
		Root:       root,
		HashLength: cfg.Index.HashLength,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	needsMigration, err := index.NeedsMigration()
	if err != nil {
		return nil, fmt.Errorf("checking index shard layout: %w", err)
	}
	if needsMigration {
		if !cfg.Index.AutoMigrate {
			return nil, fmt.Errorf("index shards do not match the configured hash length — run \"docket migrate\" (or enable index.auto_migrate)")
		}
		if _, err := index.Migrate(); err != nil {
			return nil, fmt.Errorf("re-sharding index: %w", err)
		}
	}

	records, err := record.New(record.Config{
		Root:   root,
		Clock:  clock.Real(),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Root:    root,
		Config:  cfg,
		Records: records,
		Index:   index,
	}, nil
}

// Close flushes buffered index state to disk. Status transitions and
// removals are recorded lazily; they are not durable until this runs.
func (w *Workspace) Close() error {
	return w.Index.Flush()
}

// LocateRoot resolves the issue root at or above dir and loads its
// validated configuration. Most commands want OpenWorkspace instead;
// this is for commands that manage index state themselves, like
// doctor and migrate.
func LocateRoot(dir string) (string, *config.Config, error) {
	root, err := config.FindRoot(dir)
	if err != nil {
		if errors.Is(err, config.ErrNoRoot) {
			return "", nil, fmt.Errorf("%w — run \"docket init\" to create one", err)
		}
		return "", nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, fmt.Errorf("invalid config in %s: %w", root, err)
	}
	return root, cfg, nil
}

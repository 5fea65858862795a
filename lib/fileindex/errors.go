// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import "errors"

// Sentinel errors. Operations wrap these with key and record context;
// classify with errors.Is.
var (
	// ErrNotAvailable reports that no issue root is configured, so no
	// index can exist anywhere.
	ErrNotAvailable = errors.New("fileindex: no issue root configured")

	// ErrNotFound reports a mutation against a key or record the index
	// does not hold. Lookups report absence with a boolean instead of
	// an error.
	ErrNotFound = errors.New("fileindex: not found")
)

// MigrationError reports a migration aborted by a failed shard write.
// Shards written before the failure keep their new names; re-running
// the migration resumes from current disk state.
type MigrationError struct {
	// Shard is the hash of the shard whose write failed.
	Shard string
	Err   error
}

func (e *MigrationError) Error() string {
	return "fileindex: migrating shard " + e.Shard + ": " + e.Err.Error()
}

func (e *MigrationError) Unwrap() error { return e.Err }

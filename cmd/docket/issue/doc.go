// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package issue implements the record-facing docket commands: add,
// close, reopen, drop, list, show, and search. Each command opens the
// workspace via [cli.OpenWorkspace], operates on the record store and
// the file index together, and flushes lazy index changes before
// reporting success.
package issue

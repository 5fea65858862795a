// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package index implements the index-maintenance docket commands:
// scan, doctor, and migrate. doctor and migrate open the index
// directly instead of going through [cli.OpenWorkspace], so they work
// on any shard layout regardless of the auto-migration setting.
package index

// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package fileindex maintains the durable mapping from source file
// paths to the issue records anchored to them. It is the only on-disk
// index in Docket: everything under its directory can be regenerated,
// but regeneration costs a scan of every record, so the index is
// treated as persistent state with explicit durability rules.
//
// # Layout
//
// State is sharded by a keyed BLAKE3 hash of the lookup key. Each
// shard is a text file at
//
//	<root>/.index/<hash[0:3]>/<hash>
//
// where the fanout subdirectory (first three hash characters) keeps
// any single directory small. The file holds one section per key:
//
//	[src/parser.c]
//	20260110_111401 = open
//	20260112_090915 = closed
//
// Multiple keys may share a shard when their truncated hashes
// collide; collisions are tolerated, logged once per [Index], and
// never resolved by rehashing.
//
// # Durability
//
// [Index.Create] is write-through: a new record is on disk before the
// call returns, because losing a just-created record is the failure
// users notice most. [Index.Transition] and [Index.Remove] are lazy:
// they mutate the cache, mark the containing shard dirty, and rely on
// [Index.Flush] to persist. All shard writes go through a temp file
// and rename, so readers never observe a partial shard.
//
// # Maintenance
//
// [Index.Migrate] rewrites every shard to a new hash length in two
// passes (plan, then write) and tolerates interruption: re-running
// resumes from whatever state the previous run left. [CheckIntegrity]
// works disk-direct, evicting records whose backing document no
// longer exists according to a caller-supplied predicate.
//
// # Concurrency
//
// An [Index] is not safe for concurrent use. Docket runs one process
// at a time against an issue root; nothing here locks files or
// coordinates between instances.
package fileindex

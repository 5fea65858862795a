// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"encoding/hex"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Shard hash length bounds, in hex characters. A shard hash is a
// prefix of a 32-byte BLAKE3 digest (64 hex characters), so lengths
// outside these bounds are clamped rather than rejected: below 16 the
// collision rate climbs, above 64 there are no digest bytes left.
const (
	MinHashLength     = 16
	MaxHashLength     = 64
	DefaultHashLength = 16
)

const (
	// indexDirName is the directory under the issue root holding all
	// shard files.
	indexDirName = ".index"

	// fanoutLength is how many leading hash characters name the fanout
	// subdirectory. Always shorter than MinHashLength.
	fanoutLength = 3
)

// shardDomainKey is the 32-byte key for BLAKE3 keyed hashing of
// lookup keys. A fixed constant; changing it renames every shard
// file. The byte values are the ASCII encoding of the domain name,
// zero-padded to 32 bytes, readable in hex dumps and debuggers.
var shardDomainKey = [32]byte{
	'd', 'o', 'c', 'k', 'e', 't', '.', 'f', 'i', 'l', 'e', 'i', 'n', 'd', 'e', 'x',
	'.', 's', 'h', 'a', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashKey returns the shard hash for a lookup key: the hex encoding
// of the key's domain-separated BLAKE3 digest truncated to length,
// after clamping length to [MinHashLength, MaxHashLength]. The same
// key always yields the same hash at a given length, and a shorter
// hash is a prefix of every longer hash of the same key. Migration
// correctness rests on both properties.
func HashKey(key string, length int) string {
	hasher, err := blake3.NewKeyed(shardDomainKey[:])
	if err != nil {
		panic("fileindex: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(key))
	return hex.EncodeToString(hasher.Sum(nil))[:clampHashLength(length)]
}

// ShardPath returns the on-disk location of a shard file: the fanout
// subdirectory named by the hash's first characters, then the full
// hash as the filename.
func ShardPath(root, shardHash string) string {
	return filepath.Join(root, indexDirName, shardHash[:fanoutLength], shardHash)
}

// clampHashLength bounds a configured hash length to what one digest
// can supply. Zero (unset) clamps up to MinHashLength, which doubles
// as DefaultHashLength.
func clampHashLength(length int) int {
	switch {
	case length < MinHashLength:
		return MinHashLength
	case length > MaxHashLength:
		return MaxHashLength
	default:
		return length
	}
}

// indexDir returns the directory holding all shard state for root.
func indexDir(root string) string {
	return filepath.Join(root, indexDirName)
}

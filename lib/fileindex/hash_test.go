// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package fileindex

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestHashKeyDeterministic(t *testing.T) {
	first := HashKey("src/a.x", 16)
	second := HashKey("src/a.x", 16)
	if first != second {
		t.Fatalf("HashKey not deterministic: %q vs %q", first, second)
	}
}

func TestHashKeyLengthClamped(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{0, MinHashLength},
		{8, MinHashLength},
		{16, 16},
		{32, 32},
		{64, 64},
		{100, MaxHashLength},
		{-3, MinHashLength},
	}
	for _, test := range tests {
		got := len(HashKey("src/a.x", test.length))
		if got != test.want {
			t.Errorf("len(HashKey(key, %d)) = %d, want %d", test.length, got, test.want)
		}
	}
}

func TestHashKeyShorterIsPrefixOfLonger(t *testing.T) {
	key := "src/parser.c"
	h16 := HashKey(key, 16)
	h32 := HashKey(key, 32)
	h64 := HashKey(key, 64)
	if !strings.HasPrefix(h32, h16) {
		t.Errorf("HashKey(key, 32) = %q does not extend %q", h32, h16)
	}
	if !strings.HasPrefix(h64, h32) {
		t.Errorf("HashKey(key, 64) = %q does not extend %q", h64, h32)
	}
}

func TestHashKeyDistinguishesKeys(t *testing.T) {
	if HashKey("src/a.x", 64) == HashKey("src/b.x", 64) {
		t.Fatal("distinct keys produced identical full-length hashes")
	}
}

func TestHashKeyIsLowerHex(t *testing.T) {
	hash := HashKey("src/a.x", 64)
	for _, c := range hash {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("HashKey produced non-hex character %q in %q", c, hash)
		}
	}
}

func TestShardPathLayout(t *testing.T) {
	hash := HashKey("src/a.x", 16)
	got := ShardPath("/repo/.docket", hash)
	want := filepath.Join("/repo/.docket", ".index", hash[:3], hash)
	if got != want {
		t.Fatalf("ShardPath = %q, want %q", got, want)
	}
}

// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package record stores issue documents as markdown files under the
// issue root. Records are the source of truth the file index points
// at: the index can always be rebuilt from them, never the reverse.
//
// A record lives at <root>/issues/<id>.md, where the ID is a UTC
// timestamp (20060102_150405). The document is ordinary markdown with
// a small header convention:
//
//	# Fix overflow in tokenizer
//
//	File: src/lexer.c
//	Created: 2026-01-10 11:14:01
//
//	Repro: feed a 4097-byte identifier ...
//
// Parsing is forgiving. A hand-edited record with a missing header
// still loads; absent fields are zero values. [Exists] is the
// existence oracle the index integrity checker consumes.
package record

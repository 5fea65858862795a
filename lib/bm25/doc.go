// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

// Package bm25 ranks issue records against free-text queries using
// the Okapi BM25 algorithm. It powers `docket search`.
//
// Record fields are weighted by repeating their tokens in the scored
// token stream: titles count most, anchor paths next, body text once.
// This is a simple alternative to per-field BM25 that works well for
// small corpora (hundreds to low thousands of records).
//
// A Ranker is built over a record list at construction time and is
// immutable thereafter. It is safe for concurrent read access.
package bm25

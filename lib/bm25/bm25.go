// Copyright 2026 The Docket Authors
// SPDX-License-Identifier: Apache-2.0

package bm25

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/docketworks/docket/lib/record"
)

// BM25 parameters (Okapi variant, standard values).
const (
	paramK1      = 1.2
	paramB       = 0.75
	paramEpsilon = 0.25
)

// Field repetitions. Body text already carries the title and anchor
// path once (they are part of the document), so these push exact
// title and path hits above incidental body mentions.
const (
	weightTitle      = 3
	weightSourceFile = 2
	weightBody       = 1
)

// tokenPattern splits text into alphanumeric runs.
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Match is a single search hit.
type Match struct {
	// ID is the record ID of the matching document.
	ID string

	// Score is the relevance score. Higher is more relevant. The
	// scale depends on the corpus; scores land in the single or
	// low double digits but are not bounded.
	Score float64
}

// Ranker is a BM25 (Okapi) index over issue records. It is built at
// construction time and immutable thereafter.
type Ranker struct {
	// ids holds the record ID for each indexed document.
	ids []string

	// termFrequencies[i][term] is the term frequency in the weighted
	// token stream for record i.
	termFrequencies []map[string]int

	// lengths[i] is the total token count for record i.
	lengths []int

	// averageLength is the mean of lengths.
	averageLength float64

	// inverseDocumentFrequency[term] is the precomputed IDF score for
	// each term in the corpus.
	inverseDocumentFrequency map[string]float64
}

// New builds a Ranker over the given records. Construction is
// O(total tokens) and sub-millisecond for typical issue lists.
func New(records []record.Document) *Ranker {
	ranker := &Ranker{
		ids:                      make([]string, len(records)),
		termFrequencies:          make([]map[string]int, len(records)),
		lengths:                  make([]int, len(records)),
		inverseDocumentFrequency: make(map[string]float64),
	}

	// Track how many records contain each term (for IDF).
	documentFrequency := make(map[string]int)

	var totalLength int

	for i, doc := range records {
		ranker.ids[i] = doc.ID
		tokens := recordTokens(doc)
		ranker.lengths[i] = len(tokens)
		totalLength += len(tokens)

		termFrequency := make(map[string]int)
		seen := make(map[string]bool)
		for _, token := range tokens {
			termFrequency[token]++
			if !seen[token] {
				seen[token] = true
				documentFrequency[token]++
			}
		}
		ranker.termFrequencies[i] = termFrequency
	}

	if len(records) > 0 {
		ranker.averageLength = float64(totalLength) / float64(len(records))
	}

	// Precompute IDF for each term. Terms that appear in every record
	// get a small positive score (epsilon) rather than zero, so they
	// still contribute a tiny amount to ranking.
	documentCount := float64(len(records))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (documentCount-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf < 0 {
			idf = paramEpsilon
		}
		ranker.inverseDocumentFrequency[term] = idf
	}

	return ranker
}

// Rank returns up to limit records ordered by BM25 relevance to the
// query. Returns an empty slice if the query produces no tokens or
// matches no records.
func (r *Ranker) Rank(query string, limit int) []Match {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	type scored struct {
		index int
		score float64
	}
	var hits []scored

	for i := range r.ids {
		score := r.score(i, queryTokens)
		if score > 0 {
			hits = append(hits, scored{index: i, score: score})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	matches := make([]Match, len(hits))
	for i, hit := range hits {
		matches[i] = Match{
			ID:    r.ids[hit.index],
			Score: hit.score,
		}
	}
	return matches
}

// score computes the BM25 score for a single record against the
// query tokens.
func (r *Ranker) score(recordIndex int, queryTokens []string) float64 {
	termFrequency := r.termFrequencies[recordIndex]
	documentLength := float64(r.lengths[recordIndex])

	var score float64
	for _, token := range queryTokens {
		idf, exists := r.inverseDocumentFrequency[token]
		if !exists {
			continue
		}

		frequency := float64(termFrequency[token])
		if frequency == 0 {
			continue
		}

		// BM25 term score: IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * dl/avgdl))
		numerator := frequency * (paramK1 + 1)
		denominator := frequency + paramK1*(1-paramB+paramB*documentLength/r.averageLength)
		score += idf * numerator / denominator
	}

	return score
}

// recordTokens builds the weighted token stream for one record.
func recordTokens(doc record.Document) []string {
	var tokens []string

	appendWeighted := func(text string, weight int) {
		fieldTokens := Tokenize(text)
		for i := 0; i < weight; i++ {
			tokens = append(tokens, fieldTokens...)
		}
	}

	appendWeighted(doc.Title, weightTitle)
	appendWeighted(doc.SourceFile, weightSourceFile)
	appendWeighted(doc.PlainText(), weightBody)

	return tokens
}

// Tokenize splits text into lowercase alphanumeric tokens, discarding
// tokens shorter than 2 characters. This catches "a", "I", and other
// noise words that don't contribute to relevance ranking.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	matches := tokenPattern.FindAllString(lower, -1)

	// Filter short tokens in place.
	tokens := matches[:0]
	for _, match := range matches {
		if len(match) >= 2 {
			tokens = append(tokens, match)
		}
	}
	return tokens
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"cmp"
	"iter"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/statreg/core"
	"github.com/xrash/smetrics"
)

// Engine ranks statute entries for fuzzy and full-text queries.
// It is safe for concurrent use.
type Engine struct {
	maxDistance int // Fixed fuzzy threshold; 0 derives it from query length
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMaxDistance fixes the fuzzy edit-distance threshold.
// Zero restores the length-proportional default.
func WithMaxDistance(distance int) Option {
	return func(e *Engine) error {
		if distance < 0 {
			return ErrInvalidDistance
		}
		e.maxDistance = distance
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Threshold returns the maximum edit distance accepted for a query of
// queryLen runes: one edit per four runes, plus one.
func (e *Engine) Threshold(queryLen int) int {
	if e.maxDistance > 0 {
		return e.maxDistance
	}
	return max(1, queryLen/4+1)
}

// Fuzzy ranks entries by edit distance between the query and each entry's
// ID, title, and title words, keeping those within Threshold.
// Results are ordered by distance ascending then ID ascending, at most limit.
// Returned matches point at the entries passed in.
func (e *Engine) Fuzzy(entries iter.Seq[*core.StatuteEntry], query string, limit int) []core.FuzzyMatch {
	q := fold(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return []core.FuzzyMatch{}
	}
	qLen := utf8.RuneCountInString(q)
	threshold := e.Threshold(qLen)

	var matches []core.FuzzyMatch
	for entry := range entries {
		best := -1
		for _, candidate := range fuzzyCandidates(entry) {
			d, ok := boundedDistance(q, qLen, candidate, threshold)
			if ok && (best < 0 || d < best) {
				best = d
			}
			if best == 0 {
				break
			}
		}
		if best >= 0 {
			matches = append(matches, core.FuzzyMatch{Entry: entry, Distance: best})
		}
	}

	slices.SortFunc(matches, func(a, b core.FuzzyMatch) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), strings.Compare(a.Entry.ID(), b.Entry.ID()))
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	e.logger.Debug("fuzzy search", "query", query, "threshold", threshold, "hits", len(matches))
	if matches == nil {
		return []core.FuzzyMatch{}
	}
	return matches
}

// FullText ranks entries by how many distinct query tokens appear in the
// entry's title and effect description. Entries sharing no token are
// dropped. Results are ordered by score descending then ID ascending.
func (e *Engine) FullText(entries iter.Seq[*core.StatuteEntry], query string) []core.TextMatch {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return []core.TextMatch{}
	}

	var matches []core.TextMatch
	for entry := range entries {
		doc := tokenSet(entry.Statute.Title, entry.Statute.Effect.Description)
		score := 0
		for token := range queryTokens {
			if _, ok := doc[token]; ok {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, core.TextMatch{Entry: entry, Score: score})
		}
	}

	slices.SortFunc(matches, func(a, b core.TextMatch) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), strings.Compare(a.Entry.ID(), b.Entry.ID()))
	})

	e.logger.Debug("full-text search", "query", query, "tokens", len(queryTokens), "hits", len(matches))
	if matches == nil {
		return []core.TextMatch{}
	}
	return matches
}

// fuzzyCandidates returns the folded strings a query is compared against.
func fuzzyCandidates(entry *core.StatuteEntry) []string {
	title := entry.Statute.Title
	candidates := []string{fold(entry.ID()), fold(title)}
	return append(candidates, words(title)...)
}

// boundedDistance computes the edit distance between query and candidate,
// reporting false when it exceeds threshold. The rune-length difference is
// a lower bound on the distance and skips hopeless candidates cheaply.
func boundedDistance(query string, queryLen int, candidate string, threshold int) (int, bool) {
	diff := queryLen - utf8.RuneCountInString(candidate)
	if diff < 0 {
		diff = -diff
	}
	if diff > threshold {
		return 0, false
	}
	d := editDistance(query, candidate)
	return d, d <= threshold
}

// editDistance is the Levenshtein distance between a and b counted in runes.
// smetrics compares bytes, so multibyte text is first recoded to one byte
// per distinct rune. Pairs with more than 256 distinct runes fall back to
// comparing rune slices directly.
func editDistance(a, b string) int {
	if isASCII(a) && isASCII(b) {
		return smetrics.WagnerFischer(a, b, 1, 1, 1)
	}
	if ra, rb, ok := recode(a, b); ok {
		return smetrics.WagnerFischer(ra, rb, 1, 1, 1)
	}
	return runeDistance([]rune(a), []rune(b))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// recode maps every distinct rune of a and b to its own byte.
func recode(a, b string) (string, string, bool) {
	codes := make(map[rune]byte)
	encode := func(s string) ([]byte, bool) {
		out := make([]byte, 0, len(s))
		for _, r := range s {
			c, ok := codes[r]
			if !ok {
				if len(codes) > math.MaxUint8 {
					return nil, false
				}
				c = byte(len(codes))
				codes[r] = c
			}
			out = append(out, c)
		}
		return out, true
	}
	ra, ok := encode(a)
	if !ok {
		return "", "", false
	}
	rb, ok := encode(b)
	if !ok {
		return "", "", false
	}
	return string(ra), string(rb), true
}

func runeDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

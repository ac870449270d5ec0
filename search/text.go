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
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Stop words to filter out of full-text queries and documents
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "any": true, "shall": true,
}

// fold normalizes text to NFC and applies Unicode case folding.
// A Caser is stateful, so a fresh one is used per call.
func fold(text string) string {
	return cases.Fold().String(norm.NFC.String(text))
}

// words splits folded text on anything that is not a letter or digit.
func words(text string) []string {
	return strings.FieldsFunc(fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// tokenizeAndFilter splits text into folded words and removes stop words
func tokenizeAndFilter(text string) []string {
	all := words(text)
	filtered := all[:0]
	for _, word := range all {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// tokenSet returns the distinct filtered tokens of all given texts.
func tokenSet(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, text := range texts {
		for _, token := range tokenizeAndFilter(text) {
			set[token] = struct{}{}
		}
	}
	return set
}

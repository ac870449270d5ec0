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


// Package search ranks statute entries against free-text queries.
//
// The Engine type implements two independent ranking strategies:
//   - Fuzzy matching by Levenshtein edit distance against the statute ID,
//     title and individual title words, tolerant of small typos
//   - Full-text matching by counting query tokens found in the title and
//     effect description, with stop-word filtering
//
// Text is Unicode-normalized (NFC) and case-folded before comparison.
// Ties are always broken by statute ID so results are deterministic.
//
// The engine holds no state about entries: callers pass the entries to rank,
// typically while holding whatever lock protects them.
package search

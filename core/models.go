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


package core

import (
	"slices"
	"strings"
	"time"
)

// Effect describes what a statute does once its preconditions hold.
// The registry stores it verbatim and never interprets it.
type Effect struct {
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
}

// Precondition is a single condition that must hold for a statute to apply.
type Precondition struct {
	Kind       string `yaml:"kind"`
	Expression string `yaml:"expression"`
}

// Statute is the externally-owned legal rule carried by a StatuteEntry.
// It is produced upstream (by a DSL parser or builder) and treated as an
// opaque value apart from its identifier, title and effect description.
type Statute struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	Effect        Effect         `yaml:"effect"`
	Preconditions []Precondition `yaml:"preconditions,omitempty"`
}

// Clone returns a deep copy of the statute.
func (s Statute) Clone() Statute {
	s.Preconditions = slices.Clone(s.Preconditions)
	return s
}

// StatuteEntry is the unit of storage in the registry.
type StatuteEntry struct {
	Statute      Statute
	Jurisdiction string
	Tags         []string // Set semantics; kept normalized by NormalizeTags
	Status       Status
	Version      uint64
	CreatedAt    time.Time
	ModifiedAt   time.Time
}

// ID returns the statute identifier, which is the entry's unique key.
func (e *StatuteEntry) ID() string {
	return e.Statute.ID
}

// HasTag reports whether the entry carries the given tag.
func (e *StatuteEntry) HasTag(tag string) bool {
	_, found := slices.BinarySearch(e.Tags, tag)
	return found
}

// Clone returns a deep copy of the entry. The registry only ever hands out
// clones so callers cannot mutate stored state.
func (e *StatuteEntry) Clone() *StatuteEntry {
	if e == nil {
		return nil
	}
	c := *e
	c.Statute = e.Statute.Clone()
	c.Tags = slices.Clone(e.Tags)
	return &c
}

// EntryUpdate carries the fields to change on an existing entry.
// Nil fields are left untouched. A nil Tags slice keeps the current tags,
// a non-nil (possibly empty) slice replaces them.
type EntryUpdate struct {
	Statute      *Statute
	Jurisdiction *string
	Tags         []string
	Status       *Status
}

// VersionRecord is an immutable snapshot of an entry at one version.
type VersionRecord struct {
	Version    uint64
	Entry      StatuteEntry
	RecordedAt time.Time
	Digest     Digest // Fingerprint of Entry content at RecordedAt
}

// Clone returns a deep copy of the record.
func (r *VersionRecord) Clone() *VersionRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Entry = *r.Entry.Clone()
	return &c
}

// SearchQuery filters entries by exact index values. A nil field matches all.
type SearchQuery struct {
	Tag          *string
	Jurisdiction *string
	Status       *Status
}

// Pagination selects a window of an ID-ordered result set.
type Pagination struct {
	Offset int
	Limit  int
}

// Page is one window of an ID-ordered result set.
type Page struct {
	Entries []*StatuteEntry
	Total   int // Size of the full filtered set
	Offset  int
	Limit   int
}

// FuzzyMatch is a fuzzy search hit ranked by edit distance.
type FuzzyMatch struct {
	Entry    *StatuteEntry
	Distance int
}

// TextMatch is a full-text search hit ranked by matching token count.
type TextMatch struct {
	Entry *StatuteEntry
	Score int
}

// NormalizeTags trims, deduplicates and sorts tags, dropping empty ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

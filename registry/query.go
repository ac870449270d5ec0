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


package registry

import (
	"maps"
	"slices"

	"github.com/poiesic/statreg/core"
)

// QueryByTag returns the current entries carrying tag, in no particular order.
func (r *Registry) QueryByTag(tag string) []*core.StatuteEntry {
	return r.Search(core.SearchQuery{Tag: &tag})
}

// QueryByJurisdiction returns the current entries in jurisdiction, in no particular order.
func (r *Registry) QueryByJurisdiction(jurisdiction string) []*core.StatuteEntry {
	return r.Search(core.SearchQuery{Jurisdiction: &jurisdiction})
}

// QueryByStatus returns the current entries with status, in no particular order.
func (r *Registry) QueryByStatus(status core.Status) []*core.StatuteEntry {
	return r.Search(core.SearchQuery{Status: &status})
}

// Search returns the current entries matching every non-nil field of q,
// in no particular order. An empty query matches every current entry.
func (r *Registry) Search(q core.SearchQuery) []*core.StatuteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cloneAll(r.matching(q))
}

// SearchPaged returns one ID-ordered window of the entries matching q,
// together with the size of the full match set.
func (r *Registry) SearchPaged(q core.SearchQuery, p core.Pagination) core.Page {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.matching(q)
	slices.Sort(ids)
	offset, limit := clampPagination(p)
	return core.Page{
		Entries: r.cloneAll(window(ids, offset, limit)),
		Total:   len(ids),
		Offset:  offset,
		Limit:   limit,
	}
}

// List returns every current entry ordered by ID.
func (r *Registry) List() []*core.StatuteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.cloneAll(r.order)
}

// ListPaged returns the entries at [offset, offset+limit) of the ID-ordered
// listing. An offset past the end or a zero limit yields an empty page.
func (r *Registry) ListPaged(p core.Pagination) []*core.StatuteEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	offset, limit := clampPagination(p)
	return r.cloneAll(window(r.order, offset, limit))
}

// Count returns the number of current entries, independent of any filter.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// FuzzySearch ranks current entries by edit distance to query against their
// ID and title, returning at most limit matches, closest first.
func (r *Registry) FuzzySearch(query string, limit int) []core.FuzzyMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.engine.Fuzzy(maps.Values(r.entries), query, limit)
	for i := range matches {
		matches[i].Entry = matches[i].Entry.Clone()
	}
	return matches
}

// FullTextSearch ranks current entries by the number of query tokens found
// in their title and effect description. Every match is returned.
func (r *Registry) FullTextSearch(query string) []core.TextMatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := r.engine.FullText(maps.Values(r.entries), query)
	for i := range matches {
		matches[i].Entry = matches[i].Entry.Clone()
	}
	return matches
}

// matching returns the IDs selected by q. Must be called with mu held.
func (r *Registry) matching(q core.SearchQuery) []string {
	sets := r.indexes.lookup(q)
	if sets == nil {
		return slices.Clone(r.order)
	}
	return intersect(sets)
}

// cloneAll returns clones of the current entries for ids. Must be called with mu held.
func (r *Registry) cloneAll(ids []string) []*core.StatuteEntry {
	out := make([]*core.StatuteEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out
}

// clampPagination treats negative offsets and limits as zero.
func clampPagination(p core.Pagination) (offset, limit int) {
	return max(p.Offset, 0), max(p.Limit, 0)
}

func window(ids []string, offset, limit int) []string {
	if offset >= len(ids) || limit == 0 {
		return nil
	}
	if limit > len(ids)-offset {
		return ids[offset:]
	}
	return ids[offset : offset+limit]
}

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
	"github.com/poiesic/statreg/core"
)

// index maps an attribute value to the set of IDs whose current entry has it.
type index[K comparable] map[K]map[string]struct{}

func (ix index[K]) add(key K, id string) {
	set, ok := ix[key]
	if !ok {
		set = make(map[string]struct{})
		ix[key] = set
	}
	set[id] = struct{}{}
}

// remove deletes id from key's set, dropping the set once empty so
// the index never keeps keys for values no current entry has.
func (ix index[K]) remove(key K, id string) {
	set, ok := ix[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(ix, key)
	}
}

// indexes groups the secondary indices kept in step with the entry store.
type indexes struct {
	byTag          index[string]
	byJurisdiction index[string]
	byStatus       index[core.Status]
}

func newIndexes() *indexes {
	return &indexes{
		byTag:          make(index[string]),
		byJurisdiction: make(index[string]),
		byStatus:       make(index[core.Status]),
	}
}

func (ix *indexes) insert(e *core.StatuteEntry) {
	id := e.ID()
	for _, tag := range e.Tags {
		ix.byTag.add(tag, id)
	}
	ix.byJurisdiction.add(e.Jurisdiction, id)
	ix.byStatus.add(e.Status, id)
}

func (ix *indexes) delete(e *core.StatuteEntry) {
	id := e.ID()
	for _, tag := range e.Tags {
		ix.byTag.remove(tag, id)
	}
	ix.byJurisdiction.remove(e.Jurisdiction, id)
	ix.byStatus.remove(e.Status, id)
}

// lookup returns the ID sets selected by the non-nil fields of q,
// or nil when q has no filters.
func (ix *indexes) lookup(q core.SearchQuery) (sets []map[string]struct{}) {
	if q.Tag != nil {
		sets = append(sets, ix.byTag[*q.Tag])
	}
	if q.Jurisdiction != nil {
		sets = append(sets, ix.byJurisdiction[*q.Jurisdiction])
	}
	if q.Status != nil {
		sets = append(sets, ix.byStatus[*q.Status])
	}
	return sets
}

// intersect returns the IDs present in every set, iterating the smallest.
func intersect(sets []map[string]struct{}) []string {
	if len(sets) == 0 {
		return nil
	}
	smallest := 0
	for i, set := range sets {
		if len(set) < len(sets[smallest]) {
			smallest = i
		}
	}

	var ids []string
outer:
	for id := range sets[smallest] {
		for i, set := range sets {
			if i == smallest {
				continue
			}
			if _, ok := set[id]; !ok {
				continue outer
			}
		}
		ids = append(ids, id)
	}
	return ids
}

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
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/statreg/core"
)

// entryCache memoizes point lookups. It is derived state: the only way a
// slot changes other than a lookup is invalidate, which every mutation path
// calls while holding the registry's exclusive lock.
//
// The underlying LRU has its own mutex, so lookups may run under the
// registry's shared lock while recency bookkeeping stays serialized.
type entryCache struct {
	lru     *lru.Cache[string, *core.StatuteEntry] // nil when caching is disabled
	metrics *Metrics
}

func newEntryCache(size int, metrics *Metrics) (*entryCache, error) {
	c := &entryCache{metrics: metrics}
	if size == 0 {
		return c, nil
	}
	l, err := lru.New[string, *core.StatuteEntry](size)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// get returns the cached entry for id. The caller must clone it.
func (c *entryCache) get(id string) (*core.StatuteEntry, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(id)
}

// add stores a private copy of entry, evicting the least-recently-used slot
// when full.
func (c *entryCache) add(id string, entry *core.StatuteEntry) {
	if c.lru == nil {
		return
	}
	if c.lru.Add(id, entry.Clone()) {
		c.metrics.IncrementCacheEvictions()
	}
}

// invalidate drops the slot for id.
func (c *entryCache) invalidate(id string) {
	if c.lru == nil {
		return
	}
	if c.lru.Remove(id) {
		c.metrics.IncrementInvalidations()
	}
}

func (c *entryCache) purge() {
	if c.lru != nil {
		c.lru.Purge()
	}
}

func (c *entryCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}

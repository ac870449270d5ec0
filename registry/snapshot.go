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
	"fmt"
	"maps"
	"slices"

	"github.com/poiesic/statreg/core"
)

// Snapshot copies every version chain, ordered by ID. Chains of removed
// entries are included with Live false when history is retained.
func (r *Registry) Snapshot() *core.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(r.history))
	snap := &core.Snapshot{Chains: make([]core.Chain, 0, len(ids))}
	for _, id := range ids {
		chain := r.history[id]
		records := make([]core.VersionRecord, len(chain))
		for i := range chain {
			records[i] = *chain[i].Clone()
		}
		_, live := r.entries[id]
		snap.Chains = append(snap.Chains, core.Chain{ID: id, Live: live, Records: records})
	}
	return snap
}

// Restore rebuilds an empty registry from snap. Every chain must have
// contiguous versions from 1 whose digests match their content; otherwise
// nothing is restored and ErrCorruptSnapshot is returned.
func (r *Registry) Restore(snap *core.Snapshot) error {
	if snap == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return ErrClosed
	}
	if len(r.entries) > 0 || len(r.history) > 0 {
		return ErrNotEmpty
	}

	history := make(map[string][]core.VersionRecord, len(snap.Chains))
	for _, chain := range snap.Chains {
		if err := checkChain(chain); err != nil {
			return err
		}
		if _, dup := history[chain.ID]; dup {
			return fmt.Errorf("%w: duplicate chain %s", ErrCorruptSnapshot, chain.ID)
		}
		records := make([]core.VersionRecord, len(chain.Records))
		for i := range chain.Records {
			records[i] = *chain.Records[i].Clone()
		}
		history[chain.ID] = records
	}

	for _, chain := range snap.Chains {
		if !chain.Live {
			continue
		}
		records := history[chain.ID]
		current := records[len(records)-1].Entry.Clone()
		r.entries[chain.ID] = current
		r.order = append(r.order, chain.ID)
		r.indexes.insert(current)
	}
	slices.Sort(r.order)
	r.history = history
	r.cache.purge()

	r.metrics.SetEntries(len(r.entries))
	r.logger.Info("restored registry", "chains", len(history), "live", len(r.entries))
	return nil
}

func checkChain(chain core.Chain) error {
	if chain.ID == "" || len(chain.Records) == 0 {
		return fmt.Errorf("%w: empty chain %q", ErrCorruptSnapshot, chain.ID)
	}
	for i := range chain.Records {
		rec := &chain.Records[i]
		if rec.Version != uint64(i)+1 {
			return fmt.Errorf("%w: %s has version %d at position %d", ErrCorruptSnapshot, chain.ID, rec.Version, i+1)
		}
		if rec.Entry.ID() != chain.ID || rec.Entry.Version != rec.Version {
			return fmt.Errorf("%w: %s version %d holds entry %s@%d",
				ErrCorruptSnapshot, chain.ID, rec.Version, rec.Entry.ID(), rec.Entry.Version)
		}
		if core.DigestEntry(&rec.Entry) != rec.Digest {
			return fmt.Errorf("%w: %s version %d digest mismatch", ErrCorruptSnapshot, chain.ID, rec.Version)
		}
	}
	return nil
}

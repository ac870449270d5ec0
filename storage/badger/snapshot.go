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


package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/statreg/core"
	"github.com/poiesic/statreg/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
// Every version record lives under its own history key and every live ID
// carries a marker key, so a saved snapshot can be inspected key by key.
type SnapshotRepository struct {
	backend *Backend
	mu      sync.RWMutex // Saves exclusive, loads shared
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a SnapshotRepository that owns backend.
// Closing the repository closes the backend.
func NewSnapshotRepository(backend *Backend) *SnapshotRepository {
	return &SnapshotRepository{backend: backend}
}

// Close closes the underlying backend. It is safe to call more than once.
func (r *SnapshotRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}

// SaveSnapshot replaces every stored chain with the chains in snap.
// The records are streamed into a new generation through a write batch,
// so the snapshot size is not bounded by a single transaction. A small
// transaction then makes the new generation current and the previous one
// is dropped. Readers see either the old snapshot or the new one.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snap *core.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if snap == nil {
		snap = &core.Snapshot{}
	}

	current, err := r.currentGeneration()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	// Leftovers of an interrupted save would mix into the new generation.
	if err := r.dropStaleGenerations(current); err != nil {
		return fmt.Errorf("save snapshot: drop stale generations: %w", err)
	}

	next := current + 1
	records, err := r.writeGeneration(ctx, next, snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	err = retryOnConflict(ctx, r.backend.logger, func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			gen, err := readGeneration(tx)
			if err != nil {
				return err
			}
			if gen != current {
				return fmt.Errorf("generation moved from %d to %d during save", current, gen)
			}
			if err := tx.Set([]byte(generationKey), binary.BigEndian.AppendUint64(nil, next)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
	}, defaultMaxAttempts, defaultBaseDelay)
	if err != nil {
		return fmt.Errorf("save snapshot: switch generation: %w", err)
	}

	// The new snapshot is current; a failed cleanup is retried by the next save.
	if err := r.dropStaleGenerations(next); err != nil {
		r.backend.logger.Warn("failed to drop previous snapshot generation", "generation", current, "err", err)
	}

	r.backend.logger.Debug("saved snapshot", "generation", next, "chains", snap.Len(), "records", records)
	return nil
}

// writeGeneration writes every chain of snap under gen and returns the
// number of version records written.
func (r *SnapshotRepository) writeGeneration(ctx context.Context, gen uint64, snap *core.Snapshot) (int, error) {
	wb := r.backend.db.NewWriteBatch()
	defer wb.Cancel()

	records := 0
	for _, chain := range snap.Chains {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for i := range chain.Records {
			rec := &chain.Records[i]
			if err := wb.Set(makeHistoryKey(gen, chain.ID, rec.Version), storage.MarshalVersionRecord(rec)); err != nil {
				return 0, err
			}
			records++
		}
		if chain.Live {
			if err := wb.Set(makeLiveKey(gen, chain.ID), nil); err != nil {
				return 0, err
			}
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return records, nil
}

// LoadSnapshot reads every stored chain of the current generation in ID order.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	snap := &core.Snapshot{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := readGeneration(tx)
		if err != nil {
			return err
		}
		live := liveIDs(tx, gen)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = generationPrefix(historyPrefix, gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		var chain *core.Chain
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()
			_, id, version, ok := parseHistoryKey(item.Key())
			if !ok {
				return fmt.Errorf("%w: malformed history key %q", storage.ErrSerializationFailed, item.Key())
			}

			var rec *core.VersionRecord
			err := item.Value(func(val []byte) error {
				var err error
				rec, err = storage.UnmarshalVersionRecord(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("%s version %d: %w", id, version, err)
			}

			if chain == nil || chain.ID != id {
				snap.Chains = append(snap.Chains, core.Chain{ID: id, Live: live[id]})
				chain = &snap.Chains[len(snap.Chains)-1]
			}
			chain.Records = append(chain.Records, *rec)
		}
		return nil
	}, false)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	r.backend.logger.Debug("loaded snapshot", "chains", snap.Len())
	return snap, nil
}

func (r *SnapshotRepository) currentGeneration() (uint64, error) {
	var gen uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		gen, err = readGeneration(tx)
		return err
	}, false)
	return gen, err
}

// dropStaleGenerations drops the history and live keys of every generation
// other than keep.
func (r *SnapshotRepository) dropStaleGenerations(keep uint64) error {
	var prefixes [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range []string{historyPrefix, livePrefix} {
			for _, gen := range storedGenerations(tx, prefix) {
				if gen != keep {
					prefixes = append(prefixes, generationPrefix(prefix, gen))
				}
			}
		}
		return nil
	}, false)
	if err != nil || len(prefixes) == 0 {
		return err
	}
	r.backend.logger.Debug("dropping stale snapshot generations", "prefixes", len(prefixes))
	return r.backend.db.DropPrefix(prefixes...)
}

// readGeneration returns the current generation, zero when nothing was saved.
func readGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(generationKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var gen uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: generation value has %d bytes", storage.ErrSerializationFailed, len(val))
		}
		gen = binary.BigEndian.Uint64(val)
		return nil
	})
	return gen, err
}

// storedGenerations lists the distinct generations present under prefix,
// seeking past each one instead of visiting all of its keys.
func storedGenerations(tx *badger.Txn, prefix string) []uint64 {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var gens []uint64
	iter.Rewind()
	for iter.Valid() {
		gen, ok := parseGeneration(prefix, iter.Item().Key())
		if !ok {
			iter.Next()
			continue
		}
		gens = append(gens, gen)
		if gen == math.MaxUint64 {
			break
		}
		iter.Seek(generationPrefix(prefix, gen+1))
	}
	return gens
}

func liveIDs(tx *badger.Txn, gen uint64) map[string]bool {
	prefix := generationPrefix(livePrefix, gen)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	live := make(map[string]bool)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		live[string(iter.Item().Key()[len(prefix):])] = true
	}
	return live
}

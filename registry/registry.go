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
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/statreg/core"
	"github.com/poiesic/statreg/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the in-memory statute store. It is safe for concurrent use.
type Registry struct {
	// mu guards entries, history, order, indexes and cache coherence.
	mu      sync.RWMutex
	entries map[string]*core.StatuteEntry   // id -> current entry
	history map[string][]core.VersionRecord // id -> chain, index = version-1
	order   []string                        // sorted IDs of current entries
	indexes *indexes
	cache   *entryCache

	engine  *search.Engine
	pool    *ants.Pool
	cfg     Config
	metrics *Metrics
	metReg  prometheus.Registerer
	logger  *slog.Logger
	now     func() time.Time
	closed  atomic.Bool
}

// Option configures a Registry's runtime collaborators.
type Option func(*Registry) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithMetricsRegisterer registers the registry's collectors with reg.
// By default collectors are created but not registered anywhere.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) error {
		r.metReg = reg
		return nil
	}
}

// WithClock overrides the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) error {
		if now != nil {
			r.now = now
		}
		return nil
	}
}

// New creates an empty registry. A nil cfg uses DefaultConfig.
// The caller must Close the registry to release its worker pool.
func New(cfg *Config, opts ...Option) (*Registry, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		entries: make(map[string]*core.StatuteEntry),
		history: make(map[string][]core.VersionRecord),
		indexes: newIndexes(),
		cfg:     *cfg,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.metrics = NewMetrics(r.metReg)

	cache, err := newEntryCache(cfg.CacheSize, r.metrics)
	if err != nil {
		return nil, err
	}
	r.cache = cache

	engine, err := search.NewEngine(
		search.WithLogger(r.logger),
		search.WithMaxDistance(cfg.FuzzyMaxDistance),
	)
	if err != nil {
		return nil, err
	}
	r.engine = engine

	pool, err := ants.NewPool(cfg.BatchWorkers)
	if err != nil {
		return nil, err
	}
	r.pool = pool

	return r, nil
}

// Close releases the worker pool and empties the cache. Mutations after
// Close fail with ErrClosed; reads keep working. Close is idempotent.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.pool.Release()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.purge()
	return nil
}

// Metrics returns the registry's collectors.
func (r *Registry) Metrics() *Metrics {
	return r.metrics
}

// Config returns a copy of the registry's configuration.
func (r *Registry) Config() Config {
	return r.cfg
}

// Register stores a new entry as the current state of its statute ID.
// Fails with ErrDuplicateID if the ID already has a current entry.
// A never-seen ID starts at version 1; an ID whose entry was removed
// continues its retained chain.
func (r *Registry) Register(entry *core.StatuteEntry) (*core.StatuteEntry, error) {
	return r.register(entry, r.cfg.ValidateOnWrite)
}

func (r *Registry) register(entry *core.StatuteEntry, validate bool) (*core.StatuteEntry, error) {
	stored, err := prepareEntry(entry, validate)
	if err != nil {
		return nil, err
	}
	id := stored.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrClosed
	}
	if _, exists := r.entries[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.ModifiedAt = now
	stored.Version = uint64(len(r.history[id])) + 1

	r.commit(stored, now)
	r.metrics.IncrementMutations("register")
	r.logger.Debug("registered statute", "id", id, "version", stored.Version)
	return stored.Clone(), nil
}

// prepareEntry copies and normalizes an incoming entry and checks the
// fields the registry depends on.
func prepareEntry(entry *core.StatuteEntry, validate bool) (*core.StatuteEntry, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}
	if entry.ID() == "" {
		return nil, fmt.Errorf("%w: statute id is empty", ErrInvalidEntry)
	}
	if err := core.ValidateStatus(entry.Status); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if validate {
		if err := validateStatute(&entry.Statute); err != nil {
			return nil, err
		}
	}

	stored := entry.Clone()
	stored.Tags = core.NormalizeTags(stored.Tags)
	return stored, nil
}

func validateStatute(s *core.Statute) error {
	if errs := s.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrValidation, errs)
	}
	return nil
}

// Update applies upd to the current entry for id, committing version+1.
// This is the only operation that increments an existing entry's version.
func (r *Registry) Update(id string, upd core.EntryUpdate) (*core.StatuteEntry, error) {
	return r.update(id, upd, r.cfg.ValidateOnWrite)
}

func (r *Registry) update(id string, upd core.EntryUpdate, validate bool) (*core.StatuteEntry, error) {
	var statute *core.Statute
	if upd.Statute != nil {
		if upd.Statute.ID != "" && upd.Statute.ID != id {
			return nil, fmt.Errorf("%w: %s != %s", ErrIDMismatch, upd.Statute.ID, id)
		}
		s := upd.Statute.Clone()
		s.ID = id
		if validate {
			if err := validateStatute(&s); err != nil {
				return nil, err
			}
		}
		statute = &s
	}
	if upd.Status != nil {
		if err := core.ValidateStatus(*upd.Status); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrClosed
	}
	current, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := current.Clone()
	if statute != nil {
		next.Statute = *statute
	}
	if upd.Jurisdiction != nil {
		next.Jurisdiction = *upd.Jurisdiction
	}
	if upd.Tags != nil {
		next.Tags = core.NormalizeTags(upd.Tags)
	}
	if upd.Status != nil {
		next.Status = *upd.Status
	}
	now := r.now()
	next.Version = current.Version + 1
	next.ModifiedAt = now

	r.commit(next, now)
	r.metrics.IncrementMutations("update")
	r.logger.Debug("updated statute", "id", id, "version", next.Version)
	return next.Clone(), nil
}

// Remove clears the current entry for id and its index memberships.
// Under RetainHistory the version chain stays queryable through GetVersion.
// Returns the removed entry.
func (r *Registry) Remove(id string) (*core.StatuteEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrClosed
	}
	current, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.entries, id)
	if i, found := slices.BinarySearch(r.order, id); found {
		r.order = slices.Delete(r.order, i, i+1)
	}
	if r.cfg.HistoryPolicy == PurgeHistory {
		delete(r.history, id)
	}
	r.indexes.delete(current)
	r.cache.invalidate(id)

	r.metrics.IncrementMutations("remove")
	r.metrics.SetEntries(len(r.entries))
	r.logger.Debug("removed statute", "id", id, "version", current.Version)
	return current.Clone(), nil
}

// commit installs next as the current entry for its ID. It writes the entry
// store, appends to the version chain, re-derives index memberships and
// invalidates the cache slot, in that order. Must be called with mu held
// exclusively; next must already carry its new version number.
func (r *Registry) commit(next *core.StatuteEntry, recordedAt time.Time) {
	id := next.ID()

	previous, existed := r.entries[id]
	r.entries[id] = next
	if !existed {
		i, _ := slices.BinarySearch(r.order, id)
		r.order = slices.Insert(r.order, i, id)
	}

	r.history[id] = append(r.history[id], core.VersionRecord{
		Version:    next.Version,
		Entry:      *next.Clone(),
		RecordedAt: recordedAt,
		Digest:     core.DigestEntry(next),
	})

	if existed {
		r.indexes.delete(previous)
	}
	r.indexes.insert(next)

	r.cache.invalidate(id)
	r.metrics.SetEntries(len(r.entries))
}

// Get returns the current entry for id, serving it from the cache when
// possible. A miss reads the entry store and populates the cache; a missing
// ID returns ErrNotFound and leaves the cache untouched.
func (r *Registry) Get(id string) (*core.StatuteEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cached, ok := r.cache.get(id); ok {
		r.metrics.IncrementCacheHits()
		return cached.Clone(), nil
	}
	r.metrics.IncrementCacheMisses()

	current, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.cache.add(id, current)
	return current.Clone(), nil
}

// GetUncached returns the current entry for id straight from the entry
// store without reading or disturbing the cache.
func (r *Registry) GetUncached(id string) (*core.StatuteEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return current.Clone(), nil
}

// GetVersion returns the snapshot of id at version v.
// Fails with ErrNotFound if id has no recorded history and with
// ErrInvalidVersion if v is outside [1, len(history)].
func (r *Registry) GetVersion(id string, v uint64) (*core.VersionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, ok := r.history[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if v < 1 || v > uint64(len(chain)) {
		return nil, fmt.Errorf("%w: %s has versions 1..%d, got %d", ErrInvalidVersion, id, len(chain), v)
	}
	return chain[v-1].Clone(), nil
}

// History returns every recorded version of id, oldest first.
func (r *Registry) History(id string) ([]*core.VersionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain, ok := r.history[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	records := make([]*core.VersionRecord, len(chain))
	for i := range chain {
		records[i] = chain[i].Clone()
	}
	return records, nil
}

// CacheLen returns the number of occupied cache slots.
func (r *Registry) CacheLen() int {
	return r.cache.len()
}

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
	"runtime"
)

// HistoryPolicy decides what happens to a version chain when its entry is removed.
type HistoryPolicy int

const (
	// RetainHistory keeps the chain queryable after removal. Re-registering
	// the ID continues the chain so version numbers are never reused.
	RetainHistory HistoryPolicy = iota
	// PurgeHistory drops the chain on removal.
	PurgeHistory
)

func (p HistoryPolicy) String() string {
	switch p {
	case RetainHistory:
		return "retain"
	case PurgeHistory:
		return "purge"
	default:
		return "unknown"
	}
}

// DefaultCacheSize comfortably holds a hot working set of statutes.
const DefaultCacheSize = 512

// Config holds tunables for a Registry.
type Config struct {
	// CacheSize is the capacity of the point-lookup LRU cache.
	// Zero disables caching; Get then behaves like GetUncached.
	// Default: 512
	CacheSize int

	// ValidateOnWrite makes Register and Update run Statute.Validate and
	// reject invalid statutes with ErrValidation.
	// Default: false
	ValidateOnWrite bool

	// HistoryPolicy controls version history on Remove.
	// Default: RetainHistory
	HistoryPolicy HistoryPolicy

	// BatchWorkers is the worker pool size used to validate batch items
	// in parallel before they are committed.
	// Default: runtime.NumCPU() / 2, with a minimum of 1
	BatchWorkers int

	// FuzzyMaxDistance fixes the fuzzy search edit-distance threshold.
	// Zero derives the threshold from the query length.
	// Default: 0
	FuzzyMaxDistance int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithCacheSize sets the cache capacity.
func WithCacheSize(size int) ConfigOption {
	return func(c *Config) {
		c.CacheSize = size
	}
}

// WithValidateOnWrite enables or disables statute validation on writes.
func WithValidateOnWrite(enabled bool) ConfigOption {
	return func(c *Config) {
		c.ValidateOnWrite = enabled
	}
}

// WithHistoryPolicy sets the history policy applied on Remove.
func WithHistoryPolicy(policy HistoryPolicy) ConfigOption {
	return func(c *Config) {
		c.HistoryPolicy = policy
	}
}

// WithBatchWorkers sets the batch validation pool size.
func WithBatchWorkers(workers int) ConfigOption {
	return func(c *Config) {
		c.BatchWorkers = workers
	}
}

// WithFuzzyMaxDistance fixes the fuzzy search threshold.
func WithFuzzyMaxDistance(distance int) ConfigOption {
	return func(c *Config) {
		c.FuzzyMaxDistance = distance
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheSize:     DefaultCacheSize,
		HistoryPolicy: RetainHistory,
		BatchWorkers:  max(1, runtime.NumCPU()/2),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithCacheSize(1024),
//	    WithValidateOnWrite(true),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: CacheSize must not be negative", ErrInvalidConfig)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("%w: BatchWorkers must be at least 1", ErrInvalidConfig)
	}
	if c.FuzzyMaxDistance < 0 {
		return fmt.Errorf("%w: FuzzyMaxDistance must not be negative", ErrInvalidConfig)
	}
	if c.HistoryPolicy != RetainHistory && c.HistoryPolicy != PurgeHistory {
		return fmt.Errorf("%w: unknown HistoryPolicy %d", ErrInvalidConfig, c.HistoryPolicy)
	}
	return nil
}

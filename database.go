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


package statreg

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/statreg/ingestion"
	"github.com/poiesic/statreg/registry"
	"github.com/poiesic/statreg/storage"
	"github.com/poiesic/statreg/storage/badger"
	"github.com/prometheus/client_golang/prometheus"
)

// Database pairs an in-memory registry with the snapshot store it was
// restored from. Changes reach disk only through Save.
type Database struct {
	registry *registry.Registry
	snapshot storage.SnapshotRepository
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	config   *registry.Config
	logger   *slog.Logger
	metrics  prometheus.Registerer
	inMemory bool
}

// WithConfig sets the registry configuration. Default is registry.DefaultConfig().
func WithConfig(cfg *registry.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.config = cfg
	}
}

// WithLogger sets the logger shared by the registry and the backend.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithMetricsRegisterer registers the registry's collectors with reg.
func WithMetricsRegisterer(reg prometheus.Registerer) DatabaseOption {
	return func(o *databaseOptions) {
		o.metrics = reg
	}
}

// InMemory keeps the snapshot store in memory. filePath is ignored.
func InMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the snapshot store at filePath and restores a registry
// from whatever it holds. A new path starts with an empty registry.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		config: registry.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}
	repo := badger.NewSnapshotRepository(backend)

	reg, err := registry.New(options.config,
		registry.WithLogger(options.logger),
		registry.WithMetricsRegisterer(options.metrics),
	)
	if err != nil {
		repo.Close()
		return nil, err
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err == nil {
		err = reg.Restore(snap)
	}
	if err != nil {
		reg.Close()
		repo.Close()
		return nil, err
	}

	options.logger.Debug("opened database", "path", filePath, "statutes", reg.Count())
	return &Database{
		registry: reg,
		snapshot: repo,
		logger:   options.logger,
	}, nil
}

// Registry returns the live registry.
func (db *Database) Registry() *registry.Registry {
	return db.registry
}

// Save writes a snapshot of the registry to the store, replacing the
// previous one.
func (db *Database) Save(ctx context.Context) error {
	snap := db.registry.Snapshot()
	if err := db.snapshot.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	db.logger.Debug("saved database", "chains", snap.Len(), "statutes", db.registry.Count())
	return nil
}

// NewIngestionPipeline creates a pipeline that loads into the registry.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.registry, opts...)
}

// Close closes the registry and then the store. Unsaved changes are lost.
func (db *Database) Close() error {
	var errs []error
	if err := db.registry.Close(); err != nil {
		db.logger.Error("error closing registry", "err", err)
		errs = append(errs, err)
	}
	if err := db.snapshot.Close(); err != nil {
		db.logger.Error("error closing snapshot store", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

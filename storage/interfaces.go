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


package storage

import (
	"context"

	"github.com/poiesic/statreg/core"
)

// SnapshotRepository persists registry snapshots. The registry itself is
// purely in-memory; durability is the caller's choice of repository.
// Implementations must be thread-safe and support concurrent access.
type SnapshotRepository interface {
	// SaveSnapshot replaces the stored snapshot with snap in one transaction.
	// A reader never observes a mix of the old and new snapshot.
	SaveSnapshot(ctx context.Context, snap *core.Snapshot) error

	// LoadSnapshot reads the stored snapshot, ordered by statute ID.
	// Returns an empty snapshot when nothing has been saved.
	LoadSnapshot(ctx context.Context) (*core.Snapshot, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

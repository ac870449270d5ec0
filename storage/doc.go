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


// Package storage provides the persistence abstraction for statreg.
//
// The registry keeps every entry, index and version chain in memory. This
// package defines how those chains leave the process: a SnapshotRepository
// saves a core.Snapshot and loads it back for registry.Restore.
//
// # Encoding
//
// Version records are encoded with mus-go serializers (see VersionRecordMUS).
// Timestamps are stored as Unix microseconds in UTC. Strings are length
// prefixed, and slices carry a varint element count.
//
// # Usage
//
// Save and reload through the BadgerDB implementation:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo := badger.NewSnapshotRepository(backend)
//	defer repo.Close()
//
//	if err := repo.SaveSnapshot(ctx, reg.Snapshot()); err != nil {
//	    log.Fatal(err)
//	}
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemorySnapshotRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage

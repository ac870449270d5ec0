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


// Package registry implements the statute registry: an in-memory, indexed,
// versioned store of statute entries with a bounded cache in front of point
// lookups.
//
// # Architecture
//
// A Registry owns several structures that are kept mutually consistent:
//
//   - Entry store: the current StatuteEntry per statute ID
//   - Version chain: the append-only history of every committed entry state,
//     indexed by version-1
//   - Indices: tag, jurisdiction and status to the set of current IDs
//   - Cache: an LRU of point lookups, invalidated on every mutation
//   - Order: the sorted list of current IDs used for pagination
//
// Every mutation (Register, Update, Remove) commits to all of them as one
// step under an exclusive lock. Reads take a shared lock. Get goes through
// the cache; every other read (queries, search, listing, history) reads the
// entry store directly so ranked and filtered results always reflect current
// state.
//
// # Ownership
//
// The registry clones entries on the way in and on the way out. Callers never
// hold references into registry state.
//
// # Batches
//
// BatchRegister and BatchUpdate apply items in input order, taking the
// exclusive lock once per item so long batches do not starve readers. A batch
// is therefore not atomic: under AbortOnError it stops at the first failure
// and reports the committed prefix, under ContinueOnError it applies every
// item and reports each outcome.
//
// # Lifecycle
//
// A Registry is an explicit handle created with New and released with Close.
// There is no package-level registry.
package registry

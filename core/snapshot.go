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


package core

// Chain is the full version history of one statute ID.
type Chain struct {
	ID      string
	Live    bool // Whether the last record is the current entry
	Records []VersionRecord
}

// Snapshot is a point-in-time copy of every version chain in a registry,
// ordered by ID. It is what callers persist and replay for durability.
type Snapshot struct {
	Chains []Chain
}

// Len returns the number of chains in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chains)
}

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

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Digest is a 64-bit content fingerprint of a StatuteEntry.
type Digest uint64

// String returns the digest as fixed-width hex.
func (d Digest) String() string {
	return fmt.Sprintf("%016x", uint64(d))
}

// DigestEntry fingerprints the content of an entry using BLAKE2b.
// Version and timestamps are excluded so identical content hashes equal.
func DigestEntry(e *StatuteEntry) Digest {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	field := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	field(e.Statute.ID)
	field(e.Statute.Title)
	field(e.Statute.Effect.Kind)
	field(e.Statute.Effect.Description)
	for _, p := range e.Statute.Preconditions {
		field(p.Kind)
		field(p.Expression)
	}
	h.Write([]byte{1})
	field(e.Jurisdiction)
	for _, tag := range e.Tags {
		field(tag)
	}
	h.Write([]byte{1})
	field(e.Status.String())

	return Digest(binary.LittleEndian.Uint64(h.Sum(nil)))
}

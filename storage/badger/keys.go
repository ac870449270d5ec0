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
	"encoding/binary"
)

const (
	generationKey = "stagen"
	historyPrefix = "stahist:"
	livePrefix    = "stalive:"
)

// Every saved snapshot is written under a fresh generation number and made
// current by rewriting generationKey. Records of any other generation are
// stale and get dropped.

// generationPrefix returns prefix followed by the big-endian generation.
func generationPrefix(prefix string, gen uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	return buf
}

// parseGeneration reads the generation that follows prefix in key.
func parseGeneration(prefix string, key []byte) (uint64, bool) {
	if len(key) < len(prefix)+8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(prefix):]), true
}

// makeHistoryKey generates the key of one version record.
// Format: prefix:gen id\x00version, with the generation and version
// big-endian so a prefix scan yields chains by ID and records by version.
func makeHistoryKey(gen uint64, id string, version uint64) []byte {
	buf := make([]byte, len(historyPrefix)+8+len(id)+1+8)
	offset := copy(buf, historyPrefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	offset += 8
	offset += copy(buf[offset:], id)
	buf[offset] = 0
	offset++
	binary.BigEndian.PutUint64(buf[offset:], version)
	return buf
}

// parseHistoryKey splits a history key into its generation, ID and version.
func parseHistoryKey(key []byte) (gen uint64, id string, version uint64, ok bool) {
	head := len(historyPrefix) + 8
	if len(key) < head+1+8 {
		return 0, "", 0, false
	}
	sep := len(key) - 9
	if key[sep] != 0 {
		return 0, "", 0, false
	}
	gen = binary.BigEndian.Uint64(key[len(historyPrefix):head])
	return gen, string(key[head:sep]), binary.BigEndian.Uint64(key[sep+1:]), true
}

// makeLiveKey generates the marker key for an ID with a current entry.
// Format: prefix:gen id
func makeLiveKey(gen uint64, id string) []byte {
	return append(generationPrefix(livePrefix, gen), id...)
}

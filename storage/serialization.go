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
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/statreg/core"
)

// VersionRecordMUS is the mus-go serializer for core.VersionRecord.
var VersionRecordMUS = versionRecordMUS{}

// MarshalVersionRecord serializes a VersionRecord to bytes.
func MarshalVersionRecord(record *core.VersionRecord) []byte {
	buf := make([]byte, VersionRecordMUS.Size(*record))
	VersionRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalVersionRecord deserializes a VersionRecord from bytes.
func UnmarshalVersionRecord(data []byte) (*core.VersionRecord, error) {
	record, n, err := VersionRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &record, nil
}

type versionRecordMUS struct{}

func (versionRecordMUS) Marshal(r core.VersionRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(r.Version, bs)
	n += marshalEntry(r.Entry, bs[n:])
	n += marshalTime(r.RecordedAt, bs[n:])
	return n + varint.Uint64.Marshal(uint64(r.Digest), bs[n:])
}

func (versionRecordMUS) Unmarshal(bs []byte) (r core.VersionRecord, n int, err error) {
	r.Version, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	r.Entry, n1, err = unmarshalEntry(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.RecordedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var digest uint64
	digest, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	r.Digest = core.Digest(digest)
	return
}

func (versionRecordMUS) Size(r core.VersionRecord) int {
	return varint.Uint64.Size(r.Version) +
		sizeEntry(r.Entry) +
		sizeTime(r.RecordedAt) +
		varint.Uint64.Size(uint64(r.Digest))
}

// Entry layout: statute, jurisdiction, tags, status, version, created, modified.

func marshalEntry(e core.StatuteEntry, bs []byte) (n int) {
	n = marshalStatute(e.Statute, bs)
	n += ord.String.Marshal(e.Jurisdiction, bs[n:])
	n += marshalStrings(e.Tags, bs[n:])
	n += varint.Int64.Marshal(int64(e.Status), bs[n:])
	n += varint.Uint64.Marshal(e.Version, bs[n:])
	n += marshalTime(e.CreatedAt, bs[n:])
	return n + marshalTime(e.ModifiedAt, bs[n:])
}

func unmarshalEntry(bs []byte) (e core.StatuteEntry, n int, err error) {
	e.Statute, n, err = unmarshalStatute(bs)
	if err != nil {
		return
	}
	var n1 int
	e.Jurisdiction, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Tags, n1, err = unmarshalStrings(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var status int64
	status, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.Status = core.Status(status)
	if err = core.ValidateStatus(e.Status); err != nil {
		return
	}
	e.Version, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.CreatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	e.ModifiedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func sizeEntry(e core.StatuteEntry) int {
	return sizeStatute(e.Statute) +
		ord.String.Size(e.Jurisdiction) +
		sizeStrings(e.Tags) +
		varint.Int64.Size(int64(e.Status)) +
		varint.Uint64.Size(e.Version) +
		sizeTime(e.CreatedAt) +
		sizeTime(e.ModifiedAt)
}

// Statute layout: id, title, effect kind, effect description, then
// preconditions as a count followed by (kind, expression) pairs.

func marshalStatute(s core.Statute, bs []byte) (n int) {
	n = ord.String.Marshal(s.ID, bs)
	n += ord.String.Marshal(s.Title, bs[n:])
	n += ord.String.Marshal(s.Effect.Kind, bs[n:])
	n += ord.String.Marshal(s.Effect.Description, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(s.Preconditions)), bs[n:])
	for _, p := range s.Preconditions {
		n += ord.String.Marshal(p.Kind, bs[n:])
		n += ord.String.Marshal(p.Expression, bs[n:])
	}
	return n
}

func unmarshalStatute(bs []byte) (s core.Statute, n int, err error) {
	fields := []*string{&s.ID, &s.Title, &s.Effect.Kind, &s.Effect.Description}
	var n1 int
	for _, f := range fields {
		*f, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}

	var count int
	count, n1, err = unmarshalCount(bs[n:])
	n += n1
	if err != nil || count == 0 {
		return
	}
	s.Preconditions = make([]core.Precondition, count)
	for i := range s.Preconditions {
		p := &s.Preconditions[i]
		for _, f := range []*string{&p.Kind, &p.Expression} {
			*f, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	return
}

func sizeStatute(s core.Statute) int {
	size := ord.String.Size(s.ID) +
		ord.String.Size(s.Title) +
		ord.String.Size(s.Effect.Kind) +
		ord.String.Size(s.Effect.Description) +
		varint.Uint64.Size(uint64(len(s.Preconditions)))
	for _, p := range s.Preconditions {
		size += ord.String.Size(p.Kind) + ord.String.Size(p.Expression)
	}
	return size
}

func marshalStrings(ss []string, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(ss)), bs)
	for _, s := range ss {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (ss []string, n int, err error) {
	var count int
	count, n, err = unmarshalCount(bs)
	if err != nil || count == 0 {
		return
	}
	ss = make([]string, count)
	var n1 int
	for i := range ss {
		ss[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sizeStrings(ss []string) int {
	size := varint.Uint64.Size(uint64(len(ss)))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

// unmarshalCount reads a slice length. Every element takes at least one
// byte, so a count larger than the remaining input is rejected before
// anything is allocated.
func unmarshalCount(bs []byte) (count int, n int, err error) {
	c, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return 0, n, err
	}
	if c > uint64(len(bs)-n) {
		return 0, n, fmt.Errorf("%w: count %d exceeds %d remaining bytes", ErrTruncatedData, c, len(bs)-n)
	}
	return int(c), n, nil
}

// Timestamps are stored as Unix seconds plus a nanosecond remainder and
// decode in UTC. The zero time round-trips as the zero time.

func marshalTime(t time.Time, bs []byte) int {
	n := varint.Int64.Marshal(t.Unix(), bs)
	return n + varint.Uint64.Marshal(uint64(t.Nanosecond()), bs[n:])
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	secs, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	nanos, n1, err := varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return time.Time{}, n, err
	}
	if nanos >= uint64(time.Second) {
		return time.Time{}, n, fmt.Errorf("nanosecond remainder %d out of range", nanos)
	}
	return time.Unix(secs, int64(nanos)).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.Unix()) + varint.Uint64.Size(uint64(t.Nanosecond()))
}

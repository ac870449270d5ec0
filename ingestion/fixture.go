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


package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/statreg/core"
	"gopkg.in/yaml.v3"
)

// Fixture is the YAML document form of a set of statute entries.
type Fixture struct {
	Statutes []FixtureEntry `yaml:"statutes"`
}

// FixtureEntry is one statute with its registry metadata. Version and
// timestamps are assigned by the registry and never read from fixtures.
type FixtureEntry struct {
	core.Statute `yaml:",inline"`
	Jurisdiction string      `yaml:"jurisdiction,omitempty"`
	Tags         []string    `yaml:"tags,omitempty"`
	Status       core.Status `yaml:"status"`
}

// LoadFixture decodes a YAML fixture into new registry entries.
// Unknown fields are rejected. An empty document yields no entries.
func LoadFixture(r io.Reader) ([]*core.StatuteEntry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}

	entries := make([]*core.StatuteEntry, len(fixture.Statutes))
	for i, fe := range fixture.Statutes {
		if fe.ID == "" {
			return nil, fmt.Errorf("%w: statute %d has no id", ErrInvalidFixture, i)
		}
		entries[i] = &core.StatuteEntry{
			Statute:      fe.Statute.Clone(),
			Jurisdiction: fe.Jurisdiction,
			Tags:         fe.Tags,
			Status:       fe.Status,
		}
	}
	return entries, nil
}

// LoadFixtureFile reads and decodes the fixture at path.
func LoadFixtureFile(path string) ([]*core.StatuteEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadFixture(f)
}

// WriteFixture encodes entries as a YAML fixture that LoadFixture accepts.
func WriteFixture(w io.Writer, entries []*core.StatuteEntry) error {
	fixture := Fixture{Statutes: make([]FixtureEntry, len(entries))}
	for i, e := range entries {
		fixture.Statutes[i] = FixtureEntry{
			Statute:      e.Statute,
			Jurisdiction: e.Jurisdiction,
			Tags:         e.Tags,
			Status:       e.Status,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&fixture); err != nil {
		return err
	}
	return enc.Close()
}

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
	"fmt"
	"strings"
)

// Status is the lifecycle state of a statute.
type Status int

const (
	// StatusDraft marks a statute that has not taken effect.
	StatusDraft Status = iota
	// StatusActive marks a statute currently in force.
	StatusActive
	// StatusRepealed marks a statute that was withdrawn without replacement.
	StatusRepealed
	// StatusSuperseded marks a statute replaced by a newer one.
	StatusSuperseded
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusDraft, StatusActive, StatusRepealed, StatusSuperseded}

// String returns the lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "draft"
	case StatusActive:
		return "active"
	case StatusRepealed:
		return "repealed"
	case StatusSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return s >= StatusDraft && s <= StatusSuperseded
}

// ParseStatus converts a label (case-insensitive) to a Status.
func ParseStatus(label string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "draft":
		return StatusDraft, nil
	case "active":
		return StatusActive, nil
	case "repealed":
		return StatusRepealed, nil
	case "superseded":
		return StatusSuperseded, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, label)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s Status) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for the label form.
func (s *Status) UnmarshalYAML(unmarshal func(any) error) error {
	var label string
	if err := unmarshal(&label); err != nil {
		return err
	}
	parsed, err := ParseStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

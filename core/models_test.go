package core

import (
	"errors"
	"slices"
	"testing"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{name: "nil", tags: nil, want: []string{}},
		{name: "sorted and deduplicated", tags: []string{"tax", "civil", "tax"}, want: []string{"civil", "tax"}},
		{name: "blank tags dropped", tags: []string{" ", "civil ", ""}, want: []string{"civil"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.tags)
			if !slices.Equal(got, tt.want) {
				t.Errorf("NormalizeTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatuteEntry_Clone(t *testing.T) {
	orig := &StatuteEntry{
		Statute:      validStatute(),
		Jurisdiction: "US-CA",
		Tags:         []string{"civil", "tax"},
		Status:       StatusActive,
		Version:      3,
	}

	clone := orig.Clone()
	clone.Tags[0] = "criminal"
	clone.Statute.Preconditions[0].Expression = "changed"

	if orig.Tags[0] != "civil" {
		t.Errorf("clone shares Tags with original")
	}
	if orig.Statute.Preconditions[0].Expression != "income > 10000" {
		t.Errorf("clone shares Preconditions with original")
	}
	if clone.ID() != "tax-101" || clone.Version != 3 {
		t.Errorf("clone lost scalar fields: %+v", clone)
	}

	var nilEntry *StatuteEntry
	if nilEntry.Clone() != nil {
		t.Errorf("Clone() of nil entry should be nil")
	}
}

func TestStatuteEntry_HasTag(t *testing.T) {
	e := &StatuteEntry{Tags: NormalizeTags([]string{"tax", "civil"})}
	if !e.HasTag("civil") || !e.HasTag("tax") {
		t.Errorf("HasTag() missed a present tag")
	}
	if e.HasTag("criminal") {
		t.Errorf("HasTag() matched an absent tag")
	}
}

func TestParseStatus(t *testing.T) {
	for _, status := range Statuses {
		got, err := ParseStatus(status.String())
		if err != nil {
			t.Fatalf("ParseStatus(%q) error = %v", status.String(), err)
		}
		if got != status {
			t.Errorf("ParseStatus(%q) = %v, want %v", status.String(), got, status)
		}
	}

	if got, err := ParseStatus(" Active "); err != nil || got != StatusActive {
		t.Errorf("ParseStatus is not case and space tolerant: %v, %v", got, err)
	}

	if _, err := ParseStatus("pending"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseStatus(pending) error = %v, want %v", err, ErrInvalidStatus)
	}

	if Status(99).String() != "unknown" {
		t.Errorf("String() of invalid status = %q", Status(99).String())
	}
}

func TestDigestEntry(t *testing.T) {
	a := &StatuteEntry{Statute: validStatute(), Jurisdiction: "US-CA", Tags: []string{"tax"}}
	b := a.Clone()
	b.Version = 7

	if DigestEntry(a) != DigestEntry(b) {
		t.Errorf("digest depends on version")
	}

	b.Tags = []string{"civil"}
	if DigestEntry(a) == DigestEntry(b) {
		t.Errorf("digest ignores tags")
	}

	if len(DigestEntry(a).String()) != 16 {
		t.Errorf("Digest.String() = %q, want 16 hex chars", DigestEntry(a).String())
	}
}

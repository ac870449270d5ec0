package registry

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/statreg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, opts ...ConfigOption) *Registry {
	t.Helper()
	r, err := New(NewConfig(opts...))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func testEntry(id, title string, tags ...string) *core.StatuteEntry {
	return &core.StatuteEntry{
		Statute: core.Statute{
			ID:     id,
			Title:  title,
			Effect: core.Effect{Kind: "obligation", Description: title + " applies"},
		},
		Jurisdiction: "US-CA",
		Tags:         tags,
		Status:       core.StatusActive,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		r, err := New(nil)
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, DefaultCacheSize, r.Config().CacheSize)
		assert.Equal(t, RetainHistory, r.Config().HistoryPolicy)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		r, err := New(nil, WithLogger(nil))
		require.NoError(t, err)
		defer r.Close()
		assert.Equal(t, slog.Default(), r.logger)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(NewConfig(WithCacheSize(-1)))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestRegister(t *testing.T) {
	r := newTestRegistry(t)

	stored, err := r.Register(testEntry("s1", "Test Statute", "tax", "civil", "tax"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.Version)
	assert.Equal(t, []string{"civil", "tax"}, stored.Tags)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, stored.CreatedAt, stored.ModifiedAt)
	assert.Equal(t, 1, r.Count())

	t.Run("duplicate id", func(t *testing.T) {
		_, err := r.Register(testEntry("s1", "Another"))
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.Equal(t, 1, r.Count())
	})

	t.Run("nil entry", func(t *testing.T) {
		_, err := r.Register(nil)
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := r.Register(testEntry("", "No ID"))
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("invalid status", func(t *testing.T) {
		e := testEntry("s9", "Bad Status")
		e.Status = core.Status(42)
		_, err := r.Register(e)
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, core.ErrInvalidStatus)
	})

	t.Run("caller mutations do not leak into the registry", func(t *testing.T) {
		in := testEntry("s2", "Original", "civil")
		out, err := r.Register(in)
		require.NoError(t, err)

		in.Statute.Title = "mutated input"
		in.Tags[0] = "mutated"
		out.Statute.Title = "mutated output"

		got, err := r.GetUncached("s2")
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Statute.Title)
		assert.Equal(t, []string{"civil"}, got.Tags)
	})
}

func TestRegister_ValidateOnWrite(t *testing.T) {
	r := newTestRegistry(t, WithValidateOnWrite(true))

	e := testEntry("s1", "")
	_, err := r.Register(e)
	require.ErrorIs(t, err, ErrValidation)

	var verrs core.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "title", verrs[0].Field)
	assert.Equal(t, 0, r.Count())

	// Without enforcement the same entry is accepted.
	lax := newTestRegistry(t)
	_, err = lax.Register(e)
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := New(nil, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	require.NoError(t, err)
	defer r.Close()

	created, err := r.Register(testEntry("s1", "Test Statute", "civil"))
	require.NoError(t, err)

	for i := 2; i <= 5; i++ {
		updated, err := r.Update("s1", core.EntryUpdate{
			Statute: &core.Statute{Title: fmt.Sprintf("Title v%d", i), Effect: core.Effect{Description: "d"}},
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), updated.Version)
		assert.Equal(t, "s1", updated.ID())
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.ModifiedAt.After(created.ModifiedAt))
	}

	first, err := r.GetVersion("s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Test Statute", first.Entry.Statute.Title)

	current, err := r.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "Title v5", current.Statute.Title)
	assert.Equal(t, []string{"civil"}, current.Tags, "untouched fields are kept")

	t.Run("partial fields", func(t *testing.T) {
		updated, err := r.Update("s1", core.EntryUpdate{
			Jurisdiction: ptr("US-NY"),
			Status:       ptr(core.StatusRepealed),
			Tags:         []string{},
		})
		require.NoError(t, err)
		assert.Equal(t, "US-NY", updated.Jurisdiction)
		assert.Equal(t, core.StatusRepealed, updated.Status)
		assert.Empty(t, updated.Tags)
		assert.Equal(t, "Title v5", updated.Statute.Title)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := r.Update("missing", core.EntryUpdate{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("id mismatch", func(t *testing.T) {
		_, err := r.Update("s1", core.EntryUpdate{Statute: &core.Statute{ID: "s2"}})
		assert.ErrorIs(t, err, ErrIDMismatch)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := r.Update("s1", core.EntryUpdate{Status: ptr(core.Status(-1))})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRemove_RetainsHistory(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register(testEntry("s1", "Test Statute", "civil"))
	require.NoError(t, err)
	_, err = r.Update("s1", core.EntryUpdate{Tags: []string{"criminal"}})
	require.NoError(t, err)

	removed, err := r.Remove("s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), removed.Version)
	assert.Equal(t, 0, r.Count())

	_, err = r.Get("s1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetUncached("s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, r.QueryByTag("criminal"))

	v1, err := r.GetVersion("s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Test Statute", v1.Entry.Statute.Title)

	_, err = r.Remove("s1")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("re-register continues the chain", func(t *testing.T) {
		again, err := r.Register(testEntry("s1", "Reinstated"))
		require.NoError(t, err)
		assert.Equal(t, uint64(3), again.Version)

		history, err := r.History("s1")
		require.NoError(t, err)
		require.Len(t, history, 3)
		for i, rec := range history {
			assert.Equal(t, uint64(i+1), rec.Version)
		}
	})
}

func TestRemove_PurgeHistory(t *testing.T) {
	r := newTestRegistry(t, WithHistoryPolicy(PurgeHistory))

	_, err := r.Register(testEntry("s1", "Test Statute"))
	require.NoError(t, err)
	_, err = r.Remove("s1")
	require.NoError(t, err)

	_, err = r.GetVersion("s1", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	again, err := r.Register(testEntry("s1", "Fresh"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), again.Version)
}

func TestGetVersion(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Register(testEntry("s1", "Test Statute"))
	require.NoError(t, err)
	_, err = r.Update("s1", core.EntryUpdate{Status: ptr(core.StatusSuperseded)})
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		version uint64
		wantErr error
	}{
		{name: "first version", id: "s1", version: 1},
		{name: "latest version", id: "s1", version: 2},
		{name: "version zero", id: "s1", version: 0, wantErr: ErrInvalidVersion},
		{name: "future version", id: "s1", version: 3, wantErr: ErrInvalidVersion},
		{name: "never registered", id: "nope", version: 1, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := r.GetVersion(tt.id, tt.version)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, rec.Version)
			assert.Equal(t, tt.version, rec.Entry.Version)
			assert.Equal(t, core.DigestEntry(&rec.Entry), rec.Digest)
		})
	}
}

func TestCount_RegistrationsMinusRemovals(t *testing.T) {
	r := newTestRegistry(t)
	for i := range 20 {
		_, err := r.Register(testEntry(fmt.Sprintf("s%02d", i), "Statute"))
		require.NoError(t, err)
	}
	for i := 0; i < 20; i += 3 {
		_, err := r.Remove(fmt.Sprintf("s%02d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 20-7, r.Count())
	assert.Len(t, r.List(), 13)
}

func TestClose(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	_, err = r.Register(testEntry("s1", "Test Statute"))
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close(), "close is idempotent")

	_, err = r.Register(testEntry("s2", "Late"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.Update("s1", core.EntryUpdate{})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.Remove("s1")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = r.BatchRegister([]*core.StatuteEntry{testEntry("s3", "Batch")}, AbortOnError)
	assert.ErrorIs(t, err, ErrClosed)

	got, err := r.Get("s1")
	require.NoError(t, err, "reads keep working after close")
	assert.Equal(t, "s1", got.ID())
}

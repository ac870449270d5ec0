package search

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/poiesic/statreg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, title, description string) *core.StatuteEntry {
	return &core.StatuteEntry{
		Statute: core.Statute{
			ID:     id,
			Title:  title,
			Effect: core.Effect{Kind: "obligation", Description: description},
		},
	}
}

func fixtures() []*core.StatuteEntry {
	return []*core.StatuteEntry{
		entry("s1", "Test Statute", "Applies to every test case"),
		entry("s2", "Property Tax Exemption", "Exempts primary residences from property tax"),
		entry("s3", "Income Tax Rate", "Sets the marginal income tax rate"),
		entry("s4", "Traffic Code", "Speed limits on public roads"),
		entry("statue", "Monument Preservation", "Protects public monuments"),
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		e := newEngine(t)
		assert.Equal(t, 2, e.Threshold(6))
		assert.Equal(t, 1, e.Threshold(1))
		assert.Equal(t, 4, e.Threshold(12))
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		e := newEngine(t, WithLogger(nil))
		assert.Equal(t, slog.Default(), e.logger)
	})

	t.Run("fixed max distance", func(t *testing.T) {
		e := newEngine(t, WithMaxDistance(3))
		assert.Equal(t, 3, e.Threshold(100))
	})

	t.Run("negative max distance", func(t *testing.T) {
		_, err := NewEngine(WithMaxDistance(-1))
		assert.ErrorIs(t, err, ErrInvalidDistance)
	})
}

func TestFuzzy_SingleEditTypo(t *testing.T) {
	e := newEngine(t)
	results := e.Fuzzy(slices.Values(fixtures()), "statue", 10)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Entry.ID()
	}
	assert.Contains(t, ids, "s1")

	// Exact ID match ranks first with distance 0, then the one-edit title word.
	require.GreaterOrEqual(t, len(results), 2)
	assert.Equal(t, "statue", results[0].Entry.ID())
	assert.Equal(t, 0, results[0].Distance)
	assert.Equal(t, "s1", results[1].Entry.ID())
	assert.Equal(t, 1, results[1].Distance)
}

func TestFuzzy_CaseInsensitive(t *testing.T) {
	e := newEngine(t)
	results := e.Fuzzy(slices.Values(fixtures()), "TRAFIC code", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, "s4", results[0].Entry.ID())
	assert.Equal(t, 1, results[0].Distance)
}

func TestFuzzy_TiesBrokenByID(t *testing.T) {
	entries := []*core.StatuteEntry{
		entry("b", "Tax", "x"),
		entry("c", "Tax", "x"),
		entry("a", "Tax", "x"),
	}
	e := newEngine(t)
	results := e.Fuzzy(slices.Values(entries), "tax", 10)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{
		results[0].Entry.ID(), results[1].Entry.ID(), results[2].Entry.ID(),
	})
}

func TestFuzzy_Limit(t *testing.T) {
	entries := []*core.StatuteEntry{
		entry("a", "Tax", "x"),
		entry("b", "Tax", "x"),
		entry("c", "Tax", "x"),
	}
	e := newEngine(t)
	assert.Len(t, e.Fuzzy(slices.Values(entries), "tax", 2), 2)
	assert.Empty(t, e.Fuzzy(slices.Values(entries), "tax", 0))
	assert.Empty(t, e.Fuzzy(slices.Values(entries), "   ", 10))
}

func TestFuzzy_ThresholdExcludesDistantEntries(t *testing.T) {
	e := newEngine(t)
	results := e.Fuzzy(slices.Values(fixtures()), "zzzzzz", 10)
	assert.Empty(t, results)
}

func TestFuzzy_MultibyteTitles(t *testing.T) {
	entries := []*core.StatuteEntry{
		entry("keiho", "刑法", "Criminal code"),
		entry("ca-lic", "Café Licensing", "Permits for cafés"),
		entry("zh-tax", "Zürich Tax Ordinance", "Cantonal tax"),
	}
	e := newEngine(t)

	tests := []struct {
		query string
		id    string
	}{
		{"民法", "keiho"},
		{"cafe", "ca-lic"},
		{"zurich", "zh-tax"},
		{"licensinh", "ca-lic"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results := e.Fuzzy(slices.Values(entries), tt.query, 10)
			require.Len(t, results, 1)
			assert.Equal(t, tt.id, results[0].Entry.ID())
			assert.Equal(t, 1, results[0].Distance)
		})
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"刑法", "民法", 1},
		{"café", "cafe", 1},
		{"日本国憲法", "日本憲法", 1},
		{"", "日本", 2},
		{"straße", "strasse", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, editDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, editDistance(tt.b, tt.a))
			assert.Equal(t, tt.want, runeDistance([]rune(tt.a), []rune(tt.b)))
		})
	}

	t.Run("more distinct runes than bytes", func(t *testing.T) {
		a := make([]rune, 300)
		for i := range a {
			a[i] = rune(0x4e00 + i)
		}
		b := slices.Clone(a)
		b[150] = 'x'

		_, _, ok := recode(string(a), string(b))
		require.False(t, ok)
		assert.Equal(t, 1, editDistance(string(a), string(b)))
	})
}

func TestFullText_RanksByMatchingTokens(t *testing.T) {
	e := newEngine(t)
	results := e.FullText(slices.Values(fixtures()), "income tax, property!")
	require.Len(t, results, 2)

	// s2 matches "tax" and "property"; s3 matches "income" and "tax".
	assert.Equal(t, "s2", results[0].Entry.ID())
	assert.Equal(t, 2, results[0].Score)
	assert.Equal(t, "s3", results[1].Entry.ID())
	assert.Equal(t, 2, results[1].Score)
}

func TestFullText_ScoreOrdering(t *testing.T) {
	e := newEngine(t)
	results := e.FullText(slices.Values(fixtures()), "marginal income rate public")
	require.Len(t, results, 3)
	assert.Equal(t, "s3", results[0].Entry.ID())
	assert.Equal(t, 3, results[0].Score)
	assert.Equal(t, []string{"s4", "statue"}, []string{results[1].Entry.ID(), results[2].Entry.ID()})
}

func TestFullText_StopWordsOnly(t *testing.T) {
	e := newEngine(t)
	assert.Empty(t, e.FullText(slices.Values(fixtures()), "the of and"))
	assert.Empty(t, e.FullText(slices.Values(fixtures()), ""))
}

func TestTokenizeAndFilter(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{text: "The Income-Tax Act (1998)", want: []string{"income", "tax", "act", "1998"}},
		{text: "STRAßE", want: []string{"strasse"}},
		{text: "...", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := tokenizeAndFilter(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

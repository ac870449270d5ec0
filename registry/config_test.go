package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.False(t, cfg.ValidateOnWrite)
	assert.Equal(t, RetainHistory, cfg.HistoryPolicy)
	assert.GreaterOrEqual(t, cfg.BatchWorkers, 1)
	assert.Zero(t, cfg.FuzzyMaxDistance)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithCacheSize(0),
		WithValidateOnWrite(true),
		WithHistoryPolicy(PurgeHistory),
		WithBatchWorkers(3),
		WithFuzzyMaxDistance(2),
	)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.True(t, cfg.ValidateOnWrite)
	assert.Equal(t, PurgeHistory, cfg.HistoryPolicy)
	assert.Equal(t, 3, cfg.BatchWorkers)
	assert.Equal(t, 2, cfg.FuzzyMaxDistance)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opt  ConfigOption
	}{
		{"negative cache size", WithCacheSize(-1)},
		{"no batch workers", WithBatchWorkers(0)},
		{"negative fuzzy distance", WithFuzzyMaxDistance(-1)},
		{"unknown history policy", WithHistoryPolicy(HistoryPolicy(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, NewConfig(tt.opt).Validate(), ErrInvalidConfig)
		})
	}
}

func TestHistoryPolicy_String(t *testing.T) {
	assert.Equal(t, "retain", RetainHistory.String())
	assert.Equal(t, "purge", PurgeHistory.String())
	assert.Equal(t, "unknown", HistoryPolicy(7).String())
}

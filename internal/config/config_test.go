package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/KeyIP-MCS/internal/config"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	return config.Default()
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_UnknownAlgorithm(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Matcher.Algorithm = "smsd"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matcher.algorithm")
}

func TestConfig_Validate_NegativeCounts(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Matcher.ProductCount = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reactant/product")
}

func TestConfig_Validate_NegativeEngineLimits(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Engines.Overlap.MaxCliques = -5
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engines.overlap")
}

func TestConfig_Validate_Redis(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Redis.Addr = ""
	assert.NoError(t, cfg.Validate(), "address is only required when enabled")

	cfg.Redis.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.addr")

	cfg = validConfig()
	cfg.Redis.DB = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_WorkerConcurrency(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Worker.Concurrency = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker.concurrency")
}

func TestConfig_Validate_Log(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		level  string
		format string
		field  string
	}{
		{"bad level", "trace", "json", "log.level"},
		{"bad format", "info", "text", "log.format"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			cfg.Log.Level = tc.level
			cfg.Log.Format = tc.format
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestMatcherConfig_Options(t *testing.T) {
	t.Parallel()

	opts, err := config.MatcherConfig{Algorithm: "MCSPlus", BondMatch: true, ReactantCount: 2}.Options()
	require.NoError(t, err)
	assert.Equal(t, mcstypes.AlgorithmMCSPlus, opts.Algorithm)
	assert.True(t, opts.BondMatch)
	assert.Equal(t, 2, opts.ReactantCount)

	_, err = config.MatcherConfig{Algorithm: "nope"}.Options()
	assert.Error(t, err)
}

//Personal.AI order the ending

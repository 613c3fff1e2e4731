package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
matcher:
  algorithm: mcsplus
  bond_match: true
  ring_match: false
  reactant_count: 2
  product_count: 1
engines:
  vf:
    max_matches: 8
    timeout: 2s
  extension:
    max_iterations: 5000
redis:
  enabled: true
  addr: "cache:6379"
  ttl: 1h
metrics:
  enabled: true
worker:
  concurrency: 2
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mcsplus", cfg.Matcher.Algorithm)
	assert.True(t, cfg.Matcher.BondMatch)
	assert.Equal(t, 2, cfg.Matcher.ReactantCount)
	assert.Equal(t, 8, cfg.Engines.VF.MaxMatches)
	assert.Equal(t, 2*time.Second, cfg.Engines.VF.Timeout)
	assert.Equal(t, 5000, cfg.Engines.Extension.MaxIterations)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_DefaultsFillGaps(t *testing.T) {
	path := createTempConfigFile(t, "matcher:\n  algorithm: vflib\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "vflib", cfg.Matcher.Algorithm)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "matcher: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "matcher:\n  algorithm: smsd\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("KEYIP_MCS_WORKER_CONCURRENCY", "7")
	t.Setenv("KEYIP_MCS_REDIS_ADDR", "env-cache:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Worker.Concurrency)
	assert.Equal(t, "env-cache:6380", cfg.Redis.Addr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("KEYIP_MCS_MATCHER_ALGORITHM", "cdkmcs")
	t.Setenv("KEYIP_MCS_ENGINES_OVERLAP_MAX_CLIQUES", "12")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "cdkmcs", cfg.Matcher.Algorithm)
	assert.Equal(t, 12, cfg.Engines.Overlap.MaxCliques)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgorithm, cfg.Matcher.Algorithm)

	path := createTempConfigFile(t, validConfigYAML)
	cfg, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "mcsplus", cfg.Matcher.Algorithm)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

//Personal.AI order the ending

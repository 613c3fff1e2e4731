// Package config provides configuration loading, defaults, and validation for
// KeyIP-MCS.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultAlgorithm = "default"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "keyip:"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisPoolSize  = 10

	DefaultMetricsNamespace = "keyip"
	DefaultMetricsSubsystem = "mcs"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stdout"

	DefaultWorkerConcurrency = 4
)

// ApplyDefaults fills every zero-value field in cfg with the default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Matcher ───────────────────────────────────────────────────────────────
	if cfg.Matcher.Algorithm == "" {
		cfg.Matcher.Algorithm = DefaultAlgorithm
	}

	// ── Engines ───────────────────────────────────────────────────────────────
	cfg.Engines.VF = cfg.Engines.VF.WithDefaults()
	cfg.Engines.Clique = cfg.Engines.Clique.WithDefaults()
	cfg.Engines.Overlap = cfg.Engines.Overlap.WithDefaults()
	cfg.Engines.Extension = cfg.Engines.Extension.WithDefaults()

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	// DB is an int; 0 is a valid explicit value and also the default.

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}
}

// Default returns a Config populated only from defaults.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending

// Package config defines all configuration structures for KeyIP-MCS.  No I/O
// or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// MatcherConfig holds the default matching options applied to every request
// that does not override them.
type MatcherConfig struct {
	Algorithm     string `mapstructure:"algorithm"` // "default" | "mcsplus" | "cdkmcs" | "vflib"
	BondMatch     bool   `mapstructure:"bond_match"`
	RingMatch     bool   `mapstructure:"ring_match"`
	AtomTypeMatch bool   `mapstructure:"atom_type_match"`
	ReactantCount int    `mapstructure:"reactant_count"`
	ProductCount  int    `mapstructure:"product_count"`
}

// Options converts the matcher section into request options.
func (m MatcherConfig) Options() (mcstypes.MatchOptions, error) {
	a, err := mcstypes.ParseAlgorithm(m.Algorithm)
	if err != nil {
		return mcstypes.MatchOptions{}, err
	}
	return mcstypes.MatchOptions{
		Algorithm:     a,
		BondMatch:     m.BondMatch,
		RingMatch:     m.RingMatch,
		AtomTypeMatch: m.AtomTypeMatch,
		ReactantCount: m.ReactantCount,
		ProductCount:  m.ProductCount,
	}, nil
}

// EnginesConfig bounds each reference search engine.
type EnginesConfig struct {
	VF        common.SearchLimits `mapstructure:"vf"`
	Clique    common.SearchLimits `mapstructure:"clique"`
	Overlap   common.SearchLimits `mapstructure:"overlap"`
	Extension common.SearchLimits `mapstructure:"extension"`
}

// RedisConfig holds the optional result cache parameters.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MetricsConfig holds Prometheus registration parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// WorkerConfig holds batch execution parameters.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Matcher MatcherConfig `mapstructure:"matcher"`
	Engines EnginesConfig `mapstructure:"engines"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Log     LogConfig     `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.
func (c *Config) Validate() error {
	// Matcher
	if _, err := mcstypes.ParseAlgorithm(c.Matcher.Algorithm); err != nil {
		return fmt.Errorf("config: matcher.algorithm: %w", err)
	}
	if c.Matcher.ReactantCount < 0 || c.Matcher.ProductCount < 0 {
		return fmt.Errorf("config: matcher reactant/product counts must be ≥ 0, got %d/%d",
			c.Matcher.ReactantCount, c.Matcher.ProductCount)
	}

	// Engines
	for name, l := range map[string]common.SearchLimits{
		"vf": c.Engines.VF, "clique": c.Engines.Clique,
		"overlap": c.Engines.Overlap, "extension": c.Engines.Extension,
	} {
		if l.MaxIterations < 0 || l.MaxMatches < 0 || l.MaxCliques < 0 || l.Timeout < 0 {
			return fmt.Errorf("config: engines.%s limits must not be negative", name)
		}
	}

	// Redis
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when the cache is enabled")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending

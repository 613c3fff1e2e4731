// Package config provides configuration loading, defaults, and validation for
// KeyIP-MCS.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "KEYIP_MCS"

// knownKeys are bound explicitly so that AutomaticEnv also reaches keys that
// are absent from the config file.
var knownKeys = []string{
	"matcher.algorithm", "matcher.bond_match", "matcher.ring_match",
	"matcher.atom_type_match", "matcher.reactant_count", "matcher.product_count",
	"redis.enabled", "redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"redis.ttl", "redis.key_prefix",
	"metrics.enabled", "metrics.namespace", "metrics.subsystem",
	"worker.concurrency",
	"log.level", "log.format", "log.output",
}

func init() {
	for _, engine := range []string{"vf", "clique", "overlap", "extension"} {
		for _, field := range []string{"max_iterations", "max_matches", "max_cliques", "timeout"} {
			knownKeys = append(knownKeys, "engines."+engine+"."+field)
		}
	}
}

// newViper builds a pre-configured Viper instance: YAML file type, KEYIP_MCS_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "redis.addr" resolve to "KEYIP_MCS_REDIS_ADDR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range knownKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges any KEYIP_MCS_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from KEYIP_MCS_* environment variables,
// with no config file required.
//
// Environment variable naming convention:
//
//	KEYIP_MCS_<SECTION>_<FIELD>   e.g.  KEYIP_MCS_MATCHER_ALGORITHM, KEYIP_MCS_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadOrDefault loads configPath when it is non-empty and falls back to
// LoadFromEnv otherwise.  The CLI uses it so that --config stays optional.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending

// Package integration holds end-to-end tests that run the mapping service
// with the bundled engines, real metrics and, when available, a real Redis.
package integration

import (
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-MCS/internal/application/mapping"
	"github.com/turtacn/KeyIP-MCS/internal/config"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-MCS/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-MCS/internal/intelligence/common"
	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

const (
	// EnvIntegrationEnabled enables the tests that need external services.
	EnvIntegrationEnabled = "KEYIP_INTEGRATION_TEST"

	// EnvRedisURL overrides the default Redis URL.
	EnvRedisURL = "KEYIP_TEST_REDIS_URL"

	// DefaultRedisURL is the fallback Redis URL for local dev.
	DefaultRedisURL = "redis://localhost:6379/1"
)

// RequireExternal skips t unless external services were requested.
func RequireExternal(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("set %s=1 to run tests against external services", EnvIntegrationEnabled)
	}
}

// RedisURL returns the Redis URL under test.
func RedisURL() string {
	if u := os.Getenv(EnvRedisURL); u != "" {
		return u
	}
	return DefaultRedisURL
}

// Harness is a fully wired mapping service with its metrics.
type Harness struct {
	Service   mapping.Service
	Collector prometheus.MetricsCollector
	Cache     *redis.ResultCache
}

// NewHarness wires the service the way the CLI does.  A non-nil cache is
// attached as the result cache.
func NewHarness(t *testing.T, cache *redis.ResultCache) *Harness {
	t.Helper()
	cfg := config.Default()
	logger := logging.NewNopLogger()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: cfg.Metrics.Namespace,
		Subsystem: cfg.Metrics.Subsystem,
	}, logger)
	require.NoError(t, err)
	engineMetrics, err := common.NewPrometheusEngineMetrics(collector.Registerer())
	require.NoError(t, err)

	opts := []mapping.ServiceOption{
		mapping.WithLogger(logger),
		mapping.WithMetrics(prometheus.NewMCSMetrics(collector)),
		mapping.WithConcurrency(cfg.Worker.Concurrency),
	}
	if cache != nil {
		opts = append(opts, mapping.WithCache(cache))
	}

	svc, err := mapping.NewService(mapping.NewReferenceCollaborators(cfg.Engines, logger, engineMetrics), opts...)
	require.NoError(t, err)
	return &Harness{Service: svc, Collector: collector, Cache: cache}
}

// NewRedisResultCache connects to the Redis under test, skipping t when it
// is unreachable.
func NewRedisResultCache(t *testing.T) *redis.ResultCache {
	t.Helper()
	RequireExternal(t)

	opt, err := goredis.ParseURL(RedisURL())
	require.NoError(t, err)

	client, err := redis.NewClient(&redis.ClientConfig{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	}, logging.NewNopLogger())
	if err != nil {
		t.Skipf("redis unavailable at %s: %v", opt.Addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })

	cache := redis.NewRedisCache(client, logging.NewNopLogger(), redis.WithPrefix("keyip-test:"))
	return redis.NewResultCache(cache, 0)
}

// Request builds a MapRequest with the given algorithm and default predicates.
func Request(source, target string, alg mcstypes.Algorithm) *mcstypes.MapRequest {
	return &mcstypes.MapRequest{
		SourceSMILES: source,
		TargetSMILES: target,
		Options:      mcstypes.MatchOptions{Algorithm: alg},
	}
}

//Personal.AI order the ending

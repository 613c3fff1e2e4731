package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	mcstypes "github.com/turtacn/KeyIP-MCS/pkg/types/mcs"
)

// ResultKeyPrefix namespaces mapping results inside the cache prefix.
const ResultKeyPrefix = "mcs:"

// ResultKey hashes a request into a cache key.  The source role is part of
// the key because a query source changes the predicates.
func ResultKey(req *mcstypes.MapRequest) string {
	h := sha256.New()
	h.Write([]byte(req.SourceSMILES))
	h.Write([]byte{0})
	h.Write([]byte(req.TargetSMILES))
	h.Write([]byte{0})
	if req.SourceQuery {
		h.Write([]byte("query"))
	}
	h.Write([]byte{0})
	h.Write([]byte(req.Options.CacheKey()))
	return ResultKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// ResultCache stores MapResults.
type ResultCache struct {
	cache Cache
	ttl   time.Duration
}

// NewResultCache wraps cache.  A zero ttl uses the cache default.
func NewResultCache(cache Cache, ttl time.Duration) *ResultCache {
	return &ResultCache{cache: cache, ttl: ttl}
}

// GetOrCompute returns the cached result for req or computes and stores it.
// hit is true when the result came from the cache.
func (r *ResultCache) GetOrCompute(ctx context.Context, req *mcstypes.MapRequest, compute func(ctx context.Context) (*mcstypes.MapResult, error)) (*mcstypes.MapResult, bool, error) {
	var out mcstypes.MapResult
	loaded, err := r.cache.GetOrSet(ctx, ResultKey(req), &out, r.ttl, func(ctx context.Context) (interface{}, error) {
		return compute(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return &out, !loaded, nil
}

// Invalidate removes the cached result for req.
func (r *ResultCache) Invalidate(ctx context.Context, req *mcstypes.MapRequest) error {
	return r.cache.Delete(ctx, ResultKey(req))
}

//Personal.AI order the ending

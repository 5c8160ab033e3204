package utils

import (
	"context"
	"fmt"
	"time"
)

// The global feed is the only cached view. Its serialized response bytes are
// stored in Redis for a short fixed window; within that window readers get
// the previously rendered bytes even if posts changed underneath. Writes
// never invalidate the cache -- only expiry does. Keeping the cache external
// keeps the staleness window consistent across server processes.

// FeedCacheKey builds the cache key for one page of the global feed.
func FeedCacheKey(page, size int) string {
	return fmt.Sprintf("cache:feed:global:page=%d:size=%d", page, size)
}

// CacheGetBytes returns cached bytes for a key from Redis.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		if Sugar != nil {
			Sugar.Debugf("cache get miss key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

// CacheSetBytes stores bytes under key with the given TTL. Overwrites are
// idempotent, so concurrent writers racing on the same key are benign.
func CacheSetBytes(key string, b []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Set(ctx, key, b, ttl).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("cache set failed key=%s err=%v", key, err)
		}
	}
}

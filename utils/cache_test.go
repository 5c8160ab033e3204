package utils

import (
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mr *miniredis.Miniredis

func TestMain(m *testing.M) {
	var err error
	mr, err = miniredis.Run()
	if err != nil {
		panic(err)
	}
	// Config and the Redis singleton read these once, so they must be in
	// place before any test touches them.
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("REDIS_HOST", mr.Host())
	os.Setenv("REDIS_PORT", mr.Port())

	code := m.Run()
	mr.Close()
	os.Exit(code)
}

func TestFeedCacheKey(t *testing.T) {
	assert.Equal(t, "cache:feed:global:page=1:size=10", FeedCacheKey(1, 10))
	assert.Equal(t, "cache:feed:global:page=99:size=5", FeedCacheKey(99, 5))
}

func TestCacheRoundTripReturnsIdenticalBytes(t *testing.T) {
	mr.FlushAll()

	body := []byte(`{"code":0,"message":"success","data":{"items":[]}}`)
	CacheSetBytes(FeedCacheKey(1, 10), body, 20*time.Second)

	got, ok := CacheGetBytes(FeedCacheKey(1, 10))
	require.True(t, ok)
	assert.Equal(t, body, got)
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	mr.FlushAll()

	_, ok := CacheGetBytes(FeedCacheKey(42, 10))
	assert.False(t, ok)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	mr.FlushAll()

	CacheSetBytes(FeedCacheKey(1, 10), []byte("stale"), 20*time.Second)

	_, ok := CacheGetBytes(FeedCacheKey(1, 10))
	require.True(t, ok)

	mr.FastForward(21 * time.Second)

	_, ok = CacheGetBytes(FeedCacheKey(1, 10))
	assert.False(t, ok)
}

func TestCacheIgnoresNonPositiveTTL(t *testing.T) {
	mr.FlushAll()

	CacheSetBytes(FeedCacheKey(1, 10), []byte("never stored"), 0)

	_, ok := CacheGetBytes(FeedCacheKey(1, 10))
	assert.False(t, ok)
}

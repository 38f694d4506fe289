package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("value")
	require.NoError(t, store.Set(ctx, "k", payload, time.Minute))
	payload[0] = 'X'

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "value", string(value))

	require.NoError(t, store.Delete(ctx, "k", "other"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("b"), 0))
	require.Equal(t, 2, store.Len())

	now = now.Add(time.Minute)

	_, found, _ := store.Get(ctx, "short")
	require.False(t, found)
	_, found, _ = store.Get(ctx, "forever")
	require.True(t, found)
	require.Equal(t, 1, store.Len())
}

func TestMemoryStoreIncrementWithTTL(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "rl", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Equal(t, time.Minute, ttl)

	now = now.Add(15 * time.Second)
	count, ttl, err = store.IncrementWithTTL(ctx, "rl", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Equal(t, 45*time.Second, ttl)

	now = now.Add(time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "rl", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.IncrementWithTTL(ctx, "hits", time.Minute)
		}()
	}
	wg.Wait()

	value, found, err := store.Get(ctx, "hits")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "50", string(value))
}

func TestMemoryStorePurgeExpired(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("a"), time.Second))
	require.NoError(t, store.Set(ctx, "forever", []byte("b"), 0))

	removed, err := store.PurgeExpired(ctx, now.Add(2*time.Second))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
	require.Equal(t, 1, store.Len())
}

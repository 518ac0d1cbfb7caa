package recent

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

// storeContract runs the behaviour every Store implementation shares.
func storeContract(t *testing.T, newStore func(t *testing.T, capacity int) Store) {
	ctx := context.Background()

	t.Run("dedup moves to front", func(t *testing.T) {
		s := newStore(t, 10)
		require.NoError(t, s.Add(ctx, "u1", "bib"))
		require.NoError(t, s.Add(ctx, "u1", "blanket"))
		require.NoError(t, s.Add(ctx, "u1", "  BIB "))

		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"bib", "blanket"}, got)
	})

	t.Run("cap evicts oldest", func(t *testing.T) {
		s := newStore(t, 3)
		for i := range 4 {
			require.NoError(t, s.Add(ctx, "u1", fmt.Sprintf("term%d", i)))
		}

		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"term3", "term2", "term1"}, got)
	})

	t.Run("empty term ignored", func(t *testing.T) {
		s := newStore(t, 10)
		require.NoError(t, s.Add(ctx, "u1", "   "))

		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("remove and clear", func(t *testing.T) {
		s := newStore(t, 10)
		require.NoError(t, s.Add(ctx, "u1", "bib"))
		require.NoError(t, s.Add(ctx, "u1", "burp"))
		require.NoError(t, s.Remove(ctx, "u1", "missing"))
		require.NoError(t, s.Remove(ctx, "u1", "BIB"))

		got, err := s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []string{"burp"}, got)

		require.NoError(t, s.Clear(ctx, "u1"))
		got, err = s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		s := newStore(t, 10)
		require.NoError(t, s.Add(ctx, "u1", "bib"))
		require.NoError(t, s.Add(ctx, "u2", "burp"))

		got, err := s.List(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, []string{"burp"}, got)
	})
}

func TestMemory(t *testing.T) {
	storeContract(t, func(_ *testing.T, capacity int) Store {
		return NewMemory(capacity)
	})
}

func TestMemory_ListReturnsCopy(t *testing.T) {
	m := NewMemory(0)
	require.NoError(t, m.Add(context.Background(), "u1", "bib"))

	got, _ := m.List(context.Background(), "u1")
	got[0] = "changed"

	again, _ := m.List(context.Background(), "u1")
	assert.Equal(t, []string{"bib"}, again)
}

func TestRedisIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7.4-alpine")
	require.NoError(t, err, "Failed to run Redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	storeContract(t, func(t *testing.T, capacity int) Store {
		require.NoError(t, rdb.FlushDB(ctx).Err())
		return NewRedis(rdb, capacity, 0)
	})

	t.Run("ttl applied", func(t *testing.T) {
		require.NoError(t, rdb.FlushDB(ctx).Err())
		s := NewRedis(rdb, 10, time.Hour)
		require.NoError(t, s.Add(ctx, "u1", "bib"))

		ttl, err := rdb.TTL(ctx, key("u1")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Minute)
	})
}

package catalog

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const skipIntegrationTests = "STOREFRONT_SKIP_INTEGRATION_TESTS"

type countingCounter struct {
	n     int64
	calls atomic.Int32
}

func (c *countingCounter) Count(context.Context) (int64, error) {
	c.calls.Add(1)
	return c.n, nil
}

func TestCachedTotal_FallsBackWhenRedisIsDown(t *testing.T) {
	// given
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	counter := &countingCounter{n: 7}
	total := NewCachedTotal(counter, rdb, time.Minute, discard)

	// when
	n, err := total.Total(context.Background())

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, int32(1), counter.calls.Load())
}

type CachedTotalSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	rdb       *redis.Client
	ctx       context.Context
}

func (s *CachedTotalSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.container, err = tcredis.Run(s.ctx, "redis:7.4-alpine")
	require.NoError(s.T(), err, "Failed to run Redis container")

	uri, err := s.container.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	opts, err := redis.ParseURL(uri)
	require.NoError(s.T(), err)
	s.rdb = redis.NewClient(opts)
	require.NoError(s.T(), s.rdb.Ping(s.ctx).Err())
}

func (s *CachedTotalSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *CachedTotalSuite) SetupTest() {
	require.NoError(s.T(), s.rdb.FlushDB(s.ctx).Err())
}

func TestCachedTotalIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(CachedTotalSuite))
}

func (s *CachedTotalSuite) TestCachesUntilInvalidated() {
	// given
	counter := &countingCounter{n: 14}
	total := NewCachedTotal(counter, s.rdb, time.Minute, discard)

	// when
	first, err := total.Total(s.ctx)
	require.NoError(s.T(), err)
	counter.n = 15
	cached, err := total.Total(s.ctx)
	require.NoError(s.T(), err)

	// then
	assert.Equal(s.T(), int64(14), first)
	assert.Equal(s.T(), int64(14), cached)
	assert.Equal(s.T(), int32(1), counter.calls.Load())

	require.NoError(s.T(), total.Invalidate(s.ctx))
	fresh, err := total.Total(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(15), fresh)
	assert.Equal(s.T(), int32(2), counter.calls.Load())
}

func (s *CachedTotalSuite) TestMalformedValueIsRecounted() {
	require.NoError(s.T(), s.rdb.Set(s.ctx, totalKey, "many", 0).Err())
	counter := &countingCounter{n: 3}
	total := NewCachedTotal(counter, s.rdb, time.Minute, discard)

	n, err := total.Total(s.ctx)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), n)
}

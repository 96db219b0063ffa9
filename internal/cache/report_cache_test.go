package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func TestRedisReportCacheRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	c := NewRedisReportCache(fake, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	_, hit, err := c.Get(ctx, gen, "createdAt_desc")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, gen, "createdAt_desc", []byte(`{"summary":{}}`)))
	assert.Equal(t, time.Minute, fake.ttls[keyPrefix+"0:createdAt_desc"])

	payload, hit, err := c.Get(ctx, gen, "createdAt_desc")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.JSONEq(t, `{"summary":{}}`, string(payload))

	require.NoError(t, c.Invalidate(ctx))
	next, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)
	_, hit, err = c.Get(ctx, next, "createdAt_desc")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisReportCacheFillFromRetiredGeneration(t *testing.T) {
	fake := newFakeRedis()
	c := NewRedisReportCache(fake, time.Minute)
	ctx := context.Background()

	readGen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, readGen, "createdAt_desc", []byte(`{"stale":true}`)))

	current, err := c.Generation(ctx)
	require.NoError(t, err)
	_, hit, err := c.Get(ctx, current, "createdAt_desc")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisReportCacheSurfacesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.failGet = errors.New("connection refused")
	c := NewRedisReportCache(fake, time.Minute)

	_, err := c.Generation(context.Background())
	assert.Error(t, err)
	_, hit, err := c.Get(context.Background(), 0, "createdAt_desc")
	assert.Error(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Invalidate(context.Background()))
}

func TestNopReportCache(t *testing.T) {
	var c ReportCache = NopReportCache{}
	require.NoError(t, c.Set(context.Background(), 0, "x", []byte("y")))
	_, hit, err := c.Get(context.Background(), 0, "x")
	assert.NoError(t, err)
	assert.False(t, hit)
}

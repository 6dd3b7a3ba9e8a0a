package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unreachableRedis points a client at a port nothing listens on.
func unreachableRedis(t *testing.T) *Redis {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	r := NewRedisClient(redis.NewClient(&redis.Options{
		Addr:        addr,
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	}))
	t.Cleanup(func() { r.Close() }) //nolint:errcheck
	return r
}

func TestNewRedis_BadURL(t *testing.T) {
	_, err := NewRedis("not-a-url://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: parse url")
}

func TestNewRedis_ParsesURL(t *testing.T) {
	r, err := NewRedis("redis://localhost:6379/2")
	require.NoError(t, err)
	defer r.Close() //nolint:errcheck
	assert.Equal(t, 2, r.client.Options().DB)
}

func TestRedis_Unreachable(t *testing.T) {
	r := unreachableRedis(t)
	ctx := context.Background()

	_, _, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(ctx, "k", []byte("v"), time.Minute))
	assert.Error(t, r.Ping(ctx))
}

func TestRedis_ResultCacheDegrades(t *testing.T) {
	c := New(unreachableRedis(t), "redis")
	ctx := context.Background()

	got, err := c.Get(ctx, "k")
	require.NoError(t, err, "read failures degrade to a miss")
	assert.Nil(t, got)

	err = c.Set(ctx, "k", sampleAnalysis(), time.Minute)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCache))
}

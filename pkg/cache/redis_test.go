package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	srv := miniredis.RunT(t)
	r, err := NewRedis(context.Background(), srv.Addr(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisSetGetDelete(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	_, err := r.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "images", []byte(`[1,2]`), 0))
	got, err := r.Get(ctx, "images")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), got)

	require.NoError(t, r.Delete(ctx, "images"))
	_, err = r.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKeysArePrefixed(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	r, err := NewRedis(ctx, srv.Addr(), "photocap")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "images", []byte("v"), 0))
	assert.True(t, srv.Exists("photocap:images"))
}

func TestRedisTTL(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	r, err := NewRedis(ctx, srv.Addr(), "test")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Set(ctx, "images", []byte("v"), time.Minute))
	srv.FastForward(2 * time.Minute)
	_, err = r.Get(ctx, "images")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisConnectFailure(t *testing.T) {
	_, err := NewRedis(context.Background(), "127.0.0.1:1", "test")
	assert.Error(t, err)
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.RedisAddr = mr.Addr()

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c.(*Redis), mr
}

func TestRedis_SetGet(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "unit_system:1", []byte(`{"name":"SI"}`), 0))

	got, err := c.Get(ctx, "unit_system:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"SI"}`, string(got))

	assert.True(t, mr.Exists("testbench:unit_system:1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("testbench:unit_system:1"))
}

func TestRedis_Miss(t *testing.T) {
	c, _ := setupRedis(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_Expiry(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedis_Delete(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("testbench:k"))
}

func TestNewRedis_ConnectionError(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), Config{RedisAddr: addr})
	assert.Error(t, err)
}

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(h http.Handler) *Config {
	cfg := DefaultConfig(h)
	cfg.Address = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = New(&Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestServeAndShutdown(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	srv, err := New(testConfig(h), zap.NewNop())
	require.NoError(t, err)

	var order []int
	srv.RegisterHook(func(context.Context) error { order = append(order, 1); return nil })
	srv.RegisterHook(func(context.Context) error { order = append(order, 2); return nil })

	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Equal(t, []int{2, 1}, order)
}

func TestShutdownHookErrorsAreReturned(t *testing.T) {
	srv, err := New(testConfig(http.NotFoundHandler()), zap.NewNop())
	require.NoError(t, err)

	hookErr := errors.New("nats drain failed")
	srv.RegisterHook(func(context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, srv.Run(ctx), hookErr)
}

func TestServeRequiresListen(t *testing.T) {
	srv, err := New(testConfig(http.NotFoundHandler()), zap.NewNop())
	require.NoError(t, err)

	assert.EqualError(t, srv.Serve(context.Background()), "server is not listening")
}

func TestAddrBeforeListen(t *testing.T) {
	srv, err := New(testConfig(http.NotFoundHandler()), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

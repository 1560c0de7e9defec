package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockledger/internal/config"
)

func TestNew_TimeoutsFollowRequestTimeout(t *testing.T) {
	s := New(config.ServerConfig{Port: 8081, RequestTimeout: 45 * time.Second}, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, ":8081", s.httpServer.Addr)
	assert.Equal(t, 45*time.Second, s.httpServer.ReadTimeout)
	assert.Greater(t, s.httpServer.WriteTimeout, 45*time.Second)
	assert.Equal(t, 90*time.Second, s.httpServer.IdleTimeout)
	assert.Equal(t, readHeaderTimeout, s.httpServer.ReadHeaderTimeout)
}

func TestNew_DefaultsWhenRequestTimeoutUnset(t *testing.T) {
	s := New(config.ServerConfig{Port: 8080}, http.NotFoundHandler(), zap.NewNop())

	assert.Equal(t, defaultRequestTimeout, s.httpServer.ReadTimeout)
	assert.Equal(t, defaultRequestTimeout+writeGrace, s.httpServer.WriteTimeout)
}

func TestNew_FromLoadedConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	s := New(cfg.Server, http.NotFoundHandler(), zap.NewNop())
	assert.Greater(t, s.httpServer.WriteTimeout, cfg.Server.RequestTimeout)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	s := New(config.ServerConfig{RequestTimeout: time.Second}, handler, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
	assert.NoError(t, <-done)
}

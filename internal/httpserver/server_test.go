package httpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunServesUntilContextCanceled(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(0, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, l, time.Second, zaptest.NewLogger(t)) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/", l.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewUsesPort(t *testing.T) {
	assert.Equal(t, ":8080", New(8080, http.NotFoundHandler()).Addr())
}

func TestIsClosed(t *testing.T) {
	assert.True(t, IsClosed(nil))
	assert.True(t, IsClosed(http.ErrServerClosed))
	assert.False(t, IsClosed(assert.AnError))
}

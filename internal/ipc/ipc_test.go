package ipc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func socketPath(t *testing.T) string {
	t.Helper()
	// Unix socket paths are short; t.TempDir can exceed the limit.
	dir, err := os.MkdirTemp("", "ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "ctl.sock")
}

func startServer(t *testing.T, h Handler) string {
	t.Helper()
	path := socketPath(t)

	srv, err := Listen(path, h)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		srv.Close()
	})

	return path
}

func TestSend_RoundTrip(t *testing.T) {
	path := startServer(t, func(_ context.Context, req Request) Response {
		switch req.Cmd {
		case CmdAsk:
			return Response{Reply: strings.ToUpper(req.Text)}
		default:
			return Response{Error: "unknown command " + req.Cmd}
		}
	})

	resp, err := Send(path, Request{Cmd: CmdAsk, Text: "hello"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", resp.Reply)

	resp, err = Send(path, Request{Cmd: "dance"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "unknown command dance", resp.Error)
}

func TestListen_ReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	srv, err := Listen(path, func(context.Context, Request) Response { return Response{} })
	require.NoError(t, err)
	require.NoError(t, srv.Close())
}

func TestSend_NoDaemon(t *testing.T) {
	_, err := Send(socketPath(t), Request{Cmd: CmdAsk}, time.Second)
	assert.Error(t, err)
}

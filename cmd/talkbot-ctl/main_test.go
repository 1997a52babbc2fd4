package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkbot/internal/ipc"
)

func startDaemon(t *testing.T, h ipc.Handler) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ctl")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "ctl.sock")

	srv, err := ipc.Listen(path, h)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		srv.Close()
	})
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func echoDaemon(t *testing.T) string {
	return startDaemon(t, func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Cmd {
		case ipc.CmdAsk:
			return ipc.Response{Reply: "echo: " + req.Text}
		case ipc.CmdListen:
			return ipc.Response{Error: "No speech detected. Try again."}
		case ipc.CmdTranscribe:
			return ipc.Response{Transcript: req.Path, Reply: "ok"}
		}
		return ipc.Response{Error: "unknown command: " + req.Cmd}
	})
}

func TestAsk(t *testing.T) {
	sock := echoDaemon(t)

	out, err := run(t, "", "--socket", sock, "ask", "how", "are", "you")
	require.NoError(t, err)
	assert.Equal(t, "echo: how are you\n", out)
}

func TestListen_DaemonError(t *testing.T) {
	sock := echoDaemon(t)

	_, err := run(t, "", "-s", sock, "listen")
	require.Error(t, err)
	assert.Equal(t, "No speech detected. Try again.", err.Error())
}

func TestTranscribe_SendsAbsolutePath(t *testing.T) {
	sock := echoDaemon(t)

	out, err := run(t, "", "-s", sock, "transcribe", "clip.wav")
	require.NoError(t, err)

	abs, err := filepath.Abs("clip.wav")
	require.NoError(t, err)
	assert.Contains(t, out, "You: "+abs+"\n")
	assert.Contains(t, out, "Bot: ok\n")
}

func TestNoDaemon(t *testing.T) {
	_, err := run(t, "", "-s", filepath.Join(t.TempDir(), "none.sock"), "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "talkbot not running")
}

func TestChatLoop(t *testing.T) {
	var asked []string
	ask := func(line string) (string, error) {
		asked = append(asked, line)
		return strings.ToUpper(line), nil
	}

	var out bytes.Buffer
	require.NoError(t, chatLoop(strings.NewReader("hi\nquit\nignored\n"), &out, ask))

	assert.Equal(t, []string{"hi", "quit"}, asked)
	assert.Contains(t, out.String(), "Bot: HI\n")
	assert.Contains(t, out.String(), "Bot: QUIT\n")
}

func TestChatLoop_EOFAndError(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, chatLoop(strings.NewReader(""), &out, func(string) (string, error) {
		t.Fatal("ask called on empty input")
		return "", nil
	}))

	boom := errors.New("boom")
	err := chatLoop(strings.NewReader("hello\n"), &out, func(string) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

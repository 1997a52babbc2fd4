package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestParse_Defaults(t *testing.T) {
	missingEnv(t, "OPENAI_API_KEY", "TALKBOT_NO_MIC")

	cfg, err := Parse([]string{"--env", filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	assert.Equal(t, log.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8501", cfg.Addr)
	assert.Equal(t, "chatbot.txt", cfg.Corpus)
	assert.Equal(t, BackendOpenAI, cfg.STT)
	assert.Equal(t, 5*time.Second, cfg.ListenTimeout)
	assert.Equal(t, 10*time.Second, cfg.PhraseLimit)
	assert.False(t, cfg.NoMic)
	assert.Empty(t, cfg.OpenAIKey)
}

func TestParse_EnvFileProvidesKey(t *testing.T) {
	missingEnv(t, "OPENAI_API_KEY", "TALKBOT_NO_MIC")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-test\nTALKBOT_NO_MIC=true\n"), 0o600))

	cfg, err := Parse([]string{"-e", envFile, "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.True(t, cfg.NoMic)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel)
}

func TestParse_ProcessEnvWinsOverFile(t *testing.T) {
	missingEnv(t, "TALKBOT_NO_MIC")
	t.Setenv("OPENAI_API_KEY", "sk-process")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-file\n"), 0o600))

	cfg, err := Parse([]string{"--env", envFile})
	require.NoError(t, err)
	assert.Equal(t, "sk-process", cfg.OpenAIKey)
}

func TestParse_Invalid(t *testing.T) {
	missingEnv(t, "OPENAI_API_KEY", "TALKBOT_NO_MIC")
	noEnv := "--env=" + filepath.Join(t.TempDir(), "absent.env")

	cases := map[string][]string{
		"log level": {noEnv, "--log", "loud"},
		"backend":   {noEnv, "--stt", "carrier-pigeon"},
		"flag":      {noEnv, "--nope"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(args)
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidConfig), "got %v", err)
		})
	}
}

func TestParse_BadNoMicValue(t *testing.T) {
	missingEnv(t, "OPENAI_API_KEY")
	t.Setenv("TALKBOT_NO_MIC", "sometimes")

	_, err := Parse([]string{"--env", filepath.Join(t.TempDir(), "absent.env")})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidConfig))
}

func TestOpError_Format(t *testing.T) {
	err := &OpError{Op: "corpus.load", Kind: KindNotFound, Path: "chatbot.txt", Err: os.ErrNotExist}

	assert.Equal(t, "corpus.load: not_found (path=chatbot.txt): file does not exist", err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(err, KindInvalidConfig))
}

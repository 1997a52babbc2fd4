package config

import (
	"errors"
	"fmt"
	"io/fs"
	log "log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"
)

const (
	BackendOpenAI  = "openai"
	BackendWhisper = "whisper"
	BackendNone    = "none"
)

const DefaultSocket = "/tmp/talkbot.sock"

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

type Config struct {
	EnvFile  string
	LogLevel log.Level

	Addr   string
	Socket string

	Corpus string
	Rules  string

	NoMic         bool
	ListenTimeout time.Duration
	PhraseLimit   time.Duration
	Cue           string
	Speak         bool
	Voice         string

	STT          string
	Language     string
	OpenAIModel  string
	OpenAIKey    string
	Proxy        string
	WhisperModel string
}

// Parse reads daemon flags, loads the env file and applies environment
// overrides. Values already present in the process environment win over
// the env file.
func Parse(args []string) (Config, error) {
	var cfg Config

	flags := cli.NewFlagSet("talkbot", cli.ContinueOnError)
	flags.StringVarP(&cfg.EnvFile, "env", "e", ".env", "Env file path")
	logLevel := flags.StringP("log", "l", "info", "Log level (debug|info|warn|error)")
	flags.StringVarP(&cfg.Addr, "addr", "a", ":8501", "HTTP listen address")
	flags.StringVarP(&cfg.Socket, "socket", "s", DefaultSocket, "Control socket path")
	flags.StringVarP(&cfg.Corpus, "corpus", "c", "chatbot.txt", "Corpus text file")
	flags.StringVarP(&cfg.Rules, "rules", "r", "", "YAML rules file (built-in rules when empty)")
	flags.BoolVar(&cfg.NoMic, "no-mic", false, "Disable microphone capture")
	flags.DurationVar(&cfg.ListenTimeout, "listen-timeout", 5*time.Second, "How long to wait for speech to start")
	flags.DurationVar(&cfg.PhraseLimit, "phrase-limit", 10*time.Second, "Maximum length of a captured phrase")
	flags.StringVar(&cfg.Cue, "cue", "", "MP3 played when listening starts")
	flags.BoolVar(&cfg.Speak, "speak", false, "Speak replies through espeak-ng")
	flags.StringVar(&cfg.Voice, "voice", "en", "espeak-ng voice language")
	flags.StringVar(&cfg.STT, "stt", BackendOpenAI, "Speech backend (openai|whisper|none)")
	flags.StringVar(&cfg.Language, "language", "en", "Speech language")
	flags.StringVar(&cfg.OpenAIModel, "openai-model", "whisper-1", "OpenAI transcription model")
	flags.StringVarP(&cfg.Proxy, "proxy", "p", "", "Socks proxy address for the speech API")
	flags.StringVar(&cfg.WhisperModel, "whisper-model", "models/ggml-base.en.bin", "whisper.cpp model path")

	if err := flags.Parse(args); err != nil {
		return Config{}, &OpError{Op: "config.parse", Kind: KindInvalidConfig, Err: err}
	}

	level, ok := logLevelMap[strings.ToLower(*logLevel)]
	if !ok {
		return Config{}, &OpError{
			Op:   "config.parse",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("unknown log level %q", *logLevel),
		}
	}
	cfg.LogLevel = level

	switch cfg.STT {
	case BackendOpenAI, BackendWhisper, BackendNone:
	default:
		return Config{}, &OpError{
			Op:   "config.parse",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("unknown speech backend %q", cfg.STT),
		}
	}

	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, &OpError{Op: "config.load_env", Kind: KindInvalidConfig, Path: cfg.EnvFile, Err: err}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("OPENAI_API_KEY"); ok {
		cfg.OpenAIKey = strings.TrimSpace(v)
	}

	if v, ok := lookup("TALKBOT_NO_MIC"); ok && v != "" {
		off, err := strconv.ParseBool(v)
		if err != nil {
			return &OpError{
				Op:   "config.env",
				Kind: KindInvalidConfig,
				Err:  fmt.Errorf("TALKBOT_NO_MIC: %w", err),
			}
		}
		cfg.NoMic = cfg.NoMic || off
	}

	return nil
}

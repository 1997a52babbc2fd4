package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	log "log/slog"

	cli "github.com/spf13/pflag"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"talkbot/internal/audio"
	"talkbot/internal/chat"
	"talkbot/internal/config"
	"talkbot/internal/corpus"
	"talkbot/internal/ipc"
	"talkbot/internal/notify"
	"talkbot/internal/proxy"
	"talkbot/internal/rules"
	"talkbot/internal/speech"
	"talkbot/internal/tts"
	"talkbot/internal/web"
	"talkbot/pkg/audioconv"
	"talkbot/pkg/stt"
)

// Uploaded audio is truncated to this length.
const maxUploadSeconds = 60

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, cli.ErrHelp) {
			return
		}
		log.Error("Bad configuration", "err", err)
		os.Exit(2)
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	})))

	log.Info("Booting up")

	responder, err := loadRules(cfg.Rules)
	if err != nil {
		log.Error("Failed to load rules", "err", err)
		os.Exit(1)
	}
	log.Debug("Loaded rules", "count", responder.Len())

	sentences, err := corpus.Load(cfg.Corpus)
	if err != nil {
		log.Error("Failed to load corpus", "err", err)
		os.Exit(1)
	}
	log.Debug("Loaded corpus", "path", cfg.Corpus, "sentences", sentences.Len())

	bot := chat.NewBot(responder, sentences)

	transcriber, closeSTT := newTranscriber(cfg)
	defer closeSTT()

	var capturer speech.Capturer
	micDisabled := cfg.NoMic
	if !micDisabled && transcriber != nil {
		rec := audio.NewRecorder()
		if err := rec.Init(); err != nil {
			log.Warn("No microphone, speech input disabled", "err", err)
			micDisabled = true
		} else {
			defer rec.Close()
			capturer = rec
			log.Debug("Loaded recorder")
		}
	}

	cue := notify.NewCue(cfg.Cue)
	recognizer := speech.NewRecognizer(speech.Config{
		Capturer:    capturer,
		Transcriber: transcriber,
		Options: speech.CaptureOptions{
			ListenTimeout: cfg.ListenTimeout,
			PhraseLimit:   cfg.PhraseLimit,
		},
		MicDisabled: micDisabled,
		OnListen:    cue.Play,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctl, err := ipc.Listen(cfg.Socket, controlHandler(cfg, bot, recognizer))
	if err != nil {
		log.Error("Failed control socket", "socket", cfg.Socket, "err", err)
		os.Exit(1)
	}
	defer ctl.Close()
	go func() {
		if err := ctl.Serve(ctx); err != nil {
			log.Error("Control socket stopped", "err", err)
		}
	}()

	srv := web.NewServer(web.Config{
		Bot:    bot,
		Speech: recognizer,
		Decode: decodeUpload,
	})

	log.Info("Boot up - successful", "mic", recognizer.MicEnabled(), "stt", cfg.STT)

	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.Error("Failed http server", "err", err)
		os.Exit(1)
	}

	log.Info("Shutting down")
}

func loadRules(path string) (*rules.Responder, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

// newTranscriber returns nil when speech is switched off or the backend
// cannot be set up; the chat keeps working with text input only.
func newTranscriber(cfg config.Config) (speech.Transcriber, func()) {
	noop := func() {}

	switch cfg.STT {
	case config.BackendOpenAI:
		if cfg.OpenAIKey == "" {
			log.Warn("OPENAI_API_KEY not set, speech input disabled")
			return nil, noop
		}

		httpClient, err := proxy.NewHTTPClient(cfg.Proxy, 120*time.Second)
		if err != nil {
			log.Warn("Failed to dial socks proxy, speech input disabled", "proxy", cfg.Proxy, "err", err)
			return nil, noop
		}

		client := openai.NewClient(
			option.WithAPIKey(cfg.OpenAIKey),
			option.WithHTTPClient(httpClient),
		)
		log.Debug("Loaded OpenAI transcriber", "model", cfg.OpenAIModel)
		return speech.NewOpenAI(client, cfg.OpenAIModel, cfg.Language), noop

	case config.BackendWhisper:
		whisper, err := stt.NewTranscriber(cfg.WhisperModel, stt.Options{Language: cfg.Language})
		if err != nil {
			log.Warn("Failed to init whisper, speech input disabled", "model", cfg.WhisperModel, "err", err)
			return nil, noop
		}
		log.Debug("Loaded whisper", "model", cfg.WhisperModel)
		return speech.TranscriberFunc(whisper.Transcribe), func() { whisper.Close() }

	default:
		return nil, noop
	}
}

func decodeUpload(r io.ReadSeeker, name string) ([]float32, error) {
	return audioconv.Decode(r, name, audioconv.Options{
		MaxSamples: maxUploadSeconds * audioconv.TargetRate,
	})
}

func controlHandler(cfg config.Config, bot *chat.Bot, rec *speech.Recognizer) ipc.Handler {
	return func(ctx context.Context, req ipc.Request) ipc.Response {
		var resp ipc.Response

		switch req.Cmd {
		case ipc.CmdAsk:
			resp.Reply = bot.Reply(req.Text)

		case ipc.CmdListen:
			text, err := rec.Listen(ctx)
			if err != nil {
				log.Info("Speech capture failed", "err", err)
				resp.Error = speech.Message(err)
				return resp
			}
			resp.Transcript = text
			resp.Reply = bot.Reply(text)

		case ipc.CmdTranscribe:
			pcm, err := audioconv.DecodeFile(ctx, req.Path, audioconv.Options{
				MaxSamples: maxUploadSeconds * audioconv.TargetRate,
			})
			if err != nil {
				resp.Error = err.Error()
				return resp
			}
			text, err := rec.TranscribePCM(ctx, pcm)
			if err != nil {
				log.Info("Transcription failed", "path", req.Path, "err", err)
				resp.Error = speech.Message(err)
				return resp
			}
			resp.Transcript = text
			resp.Reply = bot.Reply(text)

		default:
			log.Warn("Unknown command", "cmd", req.Cmd)
			resp.Error = "unknown command: " + req.Cmd
			return resp
		}

		if cfg.Speak {
			if err := tts.Speak(resp.Reply, cfg.Voice); err != nil {
				log.Error("Failed to voice out", "err", err)
			}
		}

		return resp
	}
}

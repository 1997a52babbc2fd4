// Package speech turns microphone audio into text.
package speech

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"sync"
	"time"
)

// SampleRate of every PCM buffer passed around this package: mono float32
// in [-1, 1].
const SampleRate = 16000

type CaptureOptions struct {
	// ListenTimeout bounds the wait for speech to begin.
	ListenTimeout time.Duration
	// PhraseLimit bounds the length of the captured phrase.
	PhraseLimit time.Duration
}

func DefaultCaptureOptions() CaptureOptions {
	return CaptureOptions{
		ListenTimeout: 5 * time.Second,
		PhraseLimit:   10 * time.Second,
	}
}

// Capturer records one phrase. It returns ErrWaitTimeout when nobody
// speaks within ListenTimeout.
type Capturer interface {
	Capture(ctx context.Context, opt CaptureOptions) ([]float32, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
}

type TranscriberFunc func(ctx context.Context, pcm []float32) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	return f(ctx, pcm)
}

type Config struct {
	Capturer    Capturer
	Transcriber Transcriber
	Options     CaptureOptions
	MicDisabled bool
	// OnListen runs right before capture starts, e.g. to play a cue.
	OnListen func()
}

// Recognizer captures a phrase and transcribes it. One capture runs at a
// time; concurrent callers queue on the microphone.
type Recognizer struct {
	mu sync.Mutex

	capturer    Capturer
	transcriber Transcriber
	opts        CaptureOptions
	micDisabled bool
	onListen    func()
}

func NewRecognizer(cfg Config) *Recognizer {
	opts := cfg.Options
	def := DefaultCaptureOptions()
	if opts.ListenTimeout <= 0 {
		opts.ListenTimeout = def.ListenTimeout
	}
	if opts.PhraseLimit <= 0 {
		opts.PhraseLimit = def.PhraseLimit
	}

	return &Recognizer{
		capturer:    cfg.Capturer,
		transcriber: cfg.Transcriber,
		opts:        opts,
		micDisabled: cfg.MicDisabled,
		onListen:    cfg.OnListen,
	}
}

// MicEnabled reports whether Listen may touch the microphone.
func (r *Recognizer) MicEnabled() bool {
	return r != nil && !r.micDisabled && r.capturer != nil && r.transcriber != nil
}

// CanTranscribe reports whether audio supplied by the caller can be turned
// into text.
func (r *Recognizer) CanTranscribe() bool {
	return r != nil && r.transcriber != nil
}

// Listen records one phrase from the microphone and returns its transcript.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	if !r.MicEnabled() {
		return "", ErrMicDisabled
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.onListen != nil {
		r.onListen()
	}

	log.Info("Listening", "timeout", r.opts.ListenTimeout, "limit", r.opts.PhraseLimit)

	pcm, err := r.capturer.Capture(ctx, r.opts)
	if err != nil {
		if errors.Is(err, ErrWaitTimeout) {
			return "", err
		}
		return "", fmt.Errorf("capture: %w", err)
	}
	if len(pcm) == 0 {
		return "", ErrWaitTimeout
	}

	log.Info("Recorded", "samples", len(pcm))

	return r.TranscribePCM(ctx, pcm)
}

// TranscribePCM transcribes 16 kHz mono audio. Backend failures that are
// not already classified count as ErrServiceUnavailable.
func (r *Recognizer) TranscribePCM(ctx context.Context, pcm []float32) (string, error) {
	if !r.CanTranscribe() {
		return "", ErrServiceUnavailable
	}
	if len(pcm) == 0 {
		return "", ErrUnintelligible
	}

	text, err := r.transcriber.Transcribe(ctx, pcm)
	if err != nil {
		if errors.Is(err, ErrUnintelligible) || errors.Is(err, ErrServiceUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnintelligible
	}

	log.Info("Transcribed", "text", text)
	return text, nil
}

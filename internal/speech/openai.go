package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"
)

// OpenAI transcribes through the OpenAI audio transcription endpoint.
type OpenAI struct {
	client   openai.Client
	model    string
	language string
}

func NewOpenAI(client openai.Client, model, language string) *OpenAI {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &OpenAI{client: client, model: model, language: language}
}

func (o *OpenAI) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	wav, err := EncodeWAV(pcm, SampleRate)
	if err != nil {
		return "", err
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wav), "speech.wav", "audio/wav"),
		Model: openai.AudioModel(o.model),
	}
	if o.language != "" && o.language != "auto" {
		params.Language = openai.String(o.language)
	}

	resp, err := o.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			log.Warn("Transcription rejected", "status", apiErr.StatusCode, "err", err)
		}
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnintelligible
	}

	return text, nil
}

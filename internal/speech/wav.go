package speech

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV renders mono float32 PCM as a 16-bit WAV file.
func EncodeWAV(pcm []float32, sampleRate int) ([]byte, error) {
	// The encoder seeks back to patch the header, so it needs a file.
	f, err := os.CreateTemp("", "talkbot-*.wav")
	if err != nil {
		return nil, fmt.Errorf("temp wav: %w", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	data := make([]int, len(pcm))
	for i, v := range pcm {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(v * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish wav: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

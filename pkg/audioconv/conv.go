// Package audioconv turns uploaded audio files into the 16 kHz mono PCM the
// speech backends expect.
package audioconv

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// TargetRate is the sample rate of every decoded clip.
const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	// MaxSamples truncates the result; 0 keeps everything.
	MaxSamples int
}

// clip is decoded audio before conversion: interleaved samples in [-1, 1].
type clip struct {
	samples  []float32
	rate     int
	channels int
}

type decoder func(r io.ReadSeeker) (clip, error)

var byExt = map[string]decoder{
	".wav":  decodeWAV,
	".mp3":  decodeMP3,
	".ogg":  decodeOgg,
	".oga":  decodeOgg,
	".opus": decodeOgg,
}

// DecodeFile converts the audio file at path.
func DecodeFile(ctx context.Context, path string, opt Options) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, filepath.Base(path), opt)
}

// Decode converts wav, mp3, ogg/vorbis or ogg/opus audio. name is only used
// for its extension; without a known extension the container is sniffed.
func Decode(r io.ReadSeeker, name string, opt Options) ([]float32, error) {
	dec, ok := byExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		var err error
		if dec, err = sniff(r); err != nil {
			return nil, fmt.Errorf("%w: %s", err, name)
		}
	}

	c, err := dec(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(c.samples) == 0 {
		return nil, fmt.Errorf("decode %s: no audio", name)
	}

	return c.mono16k(opt.MaxSamples), nil
}

func sniff(r io.ReadSeeker) (decoder, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, ErrUnsupported
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch {
	case string(magic) == "RIFF":
		return decodeWAV, nil
	case string(magic) == "OggS":
		return decodeOgg, nil
	case string(magic[:3]) == "ID3", magic[0] == 0xFF && magic[1]&0xE0 == 0xE0:
		return decodeMP3, nil
	}
	return nil, ErrUnsupported
}

func (c clip) mono16k(maxSamples int) []float32 {
	x := downmix(c.samples, c.channels)
	x = resample(x, c.rate, TargetRate)
	if maxSamples > 0 && len(x) > maxSamples {
		x = x[:maxSamples]
	}
	return x
}

func decodeWAV(r io.ReadSeeker) (clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return clip{}, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return clip{}, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return clip{}, errors.New("empty wav")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}
	scale := 1.0 / float64(int64(1)<<(depth-1))

	c := clip{
		samples:  make([]float32, len(buf.Data)),
		rate:     int(dec.SampleRate),
		channels: int(dec.NumChans),
	}
	for i, v := range buf.Data {
		c.samples[i] = float32(max(-1, min(1, float64(v)*scale)))
	}
	if f := buf.Format; f != nil && f.SampleRate > 0 && f.NumChannels > 0 {
		c.rate, c.channels = f.SampleRate, f.NumChannels
	}
	return c, nil
}

func decodeMP3(r io.ReadSeeker) (clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return clip{}, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return clip{}, err
	}

	pcm := make([]int16, raw.Len()/2)
	if err := binary.Read(&raw, binary.LittleEndian, pcm); err != nil {
		return clip{}, err
	}

	// go-mp3 always produces 16-bit stereo.
	return clip{samples: fromInt16(pcm), rate: dec.SampleRate(), channels: 2}, nil
}

// decodeOgg tries Vorbis first, then Opus.
func decodeOgg(r io.ReadSeeker) (clip, error) {
	pcm, format, vorbisErr := oggvorbis.ReadAll(r)
	if vorbisErr == nil && format != nil {
		return clip{samples: pcm, rate: format.SampleRate, channels: format.Channels}, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return clip{}, err
	}
	c, err := decodeOpus(r)
	if err != nil {
		return clip{}, fmt.Errorf("ogg is neither vorbis (%v) nor opus: %w", vorbisErr, err)
	}
	return c, nil
}

func decodeOpus(r io.ReadSeeker) (clip, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return clip{}, err
	}
	defer dec.Destroy()

	ch := max(dec.ChannelCount(), 1)
	buf := make([]int16, 24_000*ch)

	// Opus always decodes at 48 kHz.
	c := clip{rate: 48000, channels: ch}
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			c.samples = append(c.samples, fromInt16(buf[:n*ch])...)
		}
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return clip{}, err
		}
	}
}

func fromInt16(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v) / 32768
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	out := make([]float32, len(in)/channels)
	for i := range out {
		var sum float32
		for _, v := range in[i*channels : (i+1)*channels] {
			sum += v
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// resample is linear interpolation, good enough for speech.
func resample(in []float32, from, to int) []float32 {
	if from <= 0 || from == to || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	out := make([]float32, int(math.Ceil(float64(len(in))*ratio)))
	last := len(in) - 1
	for i := range out {
		pos := float64(i) / ratio
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

package notify

import (
	"fmt"
	log "log/slog"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Cue plays a short mp3 before the microphone opens so the user knows when
// to start talking.
type Cue struct {
	path string
	once sync.Once
	err  error
	rate beep.SampleRate
}

func NewCue(path string) *Cue {
	return &Cue{path: path}
}

// Play blocks until the sound has finished. Failures are logged; a missing
// cue never stops a capture.
func (c *Cue) Play() {
	if c == nil || c.path == "" {
		return
	}
	if err := c.play(); err != nil {
		log.Warn("Failed to play cue", "path", c.path, "err", err)
	}
}

func (c *Cue) play() error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode mp3: %w", err)
	}
	defer streamer.Close()

	c.once.Do(func() {
		c.rate = format.SampleRate
		c.err = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if c.err != nil {
		return fmt.Errorf("speaker init: %w", c.err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != c.rate {
		s = beep.Resample(4, format.SampleRate, c.rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))
	<-done

	return nil
}

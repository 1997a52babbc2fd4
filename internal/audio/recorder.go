package audio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"talkbot/internal/speech"
)

const (
	frameSize        = 320 // 20ms at 16 kHz
	frameDuration    = 20 * time.Millisecond
	silenceThreshRMS = 0.015 // tune if needed
	trailingSilence  = 800 * time.Millisecond
)

// Recorder captures phrases from the default input device.
type Recorder struct {
	mu sync.Mutex
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	// Fail at boot rather than on the first button press.
	if _, err := portaudio.DefaultInputDevice(); err != nil {
		portaudio.Terminate()
		return err
	}

	return nil
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// Capture waits up to opt.ListenTimeout for the signal to rise above the
// silence threshold, then records until trailing silence or
// opt.PhraseLimit, whichever comes first.
func (r *Recorder) Capture(ctx context.Context, opt speech.CaptureOptions) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf := make([]float32, frameSize)
	out := make([]float32, 0, speech.SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, speech.SampleRate, len(buf), buf)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	var (
		speaking      bool
		silenceFrames int
		spoken        int
	)

	waitFrames := framesIn(opt.ListenTimeout)
	maxFrames := framesIn(opt.PhraseLimit)
	silenceLimit := framesIn(trailingSilence)

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, err
		}

		loud := frameRMS(buf) > silenceThreshRMS

		if !speaking {
			if !loud {
				if i+1 >= waitFrames {
					return nil, speech.ErrWaitTimeout
				}
				continue
			}
			speaking = true
		}

		out = append(out, buf...)
		spoken++

		if loud {
			silenceFrames = 0
		} else {
			silenceFrames++
			if silenceFrames >= silenceLimit {
				break
			}
		}

		if spoken >= maxFrames {
			break
		}
	}

	return out, nil
}

func framesIn(d time.Duration) int {
	n := int(d / frameDuration)
	if n < 1 {
		n = 1
	}
	return n
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}

package speech

import "errors"

var (
	ErrMicDisabled        = errors.New("microphone disabled")
	ErrWaitTimeout        = errors.New("no speech before listen timeout")
	ErrUnintelligible     = errors.New("speech not understood")
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

const (
	MsgMicDisabled    = "Microphone is disabled on this host."
	MsgWaitTimeout    = "No speech detected. Try again."
	MsgUnintelligible = "Sorry, I could not understand the audio."
	MsgServiceFailed  = "Speech recognition service failed."
	MsgCaptureFailed  = "Could not record audio from the microphone."
)

// Message maps a Listen or Transcribe failure to the text shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMicDisabled):
		return MsgMicDisabled
	case errors.Is(err, ErrWaitTimeout):
		return MsgWaitTimeout
	case errors.Is(err, ErrUnintelligible):
		return MsgUnintelligible
	case errors.Is(err, ErrServiceUnavailable):
		return MsgServiceFailed
	default:
		return MsgCaptureFailed
	}
}

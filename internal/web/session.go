package web

import (
	"context"
	log "log/slog"

	"talkbot/internal/speech"
)

type Mode string

const (
	ModeText   Mode = "text"
	ModeSpeech Mode = "speech"
)

const (
	EventMode  = "mode"
	EventText  = "text"
	EventStart = "start"
	EventStop  = "stop"
)

const (
	noticeListening = "Listening... speak now and press STOP when done."
	noticeCapturing = "Capturing audio... Please speak clearly."
	noticeNoMic     = "Microphone is not supported here. Please use Text input."
	noticeThinking  = "Bot is thinking..."
)

// Event is what the page sends on every user action.
type Event struct {
	Type string `json:"type"`
	Mode Mode   `json:"mode,omitempty"`
	Text string `json:"text,omitempty"`
}

// View is the full state the page renders. Busy views are progress
// updates; the last view for an event always has Busy unset.
type View struct {
	Mode       Mode   `json:"mode"`
	Recording  bool   `json:"recording"`
	Transcript string `json:"transcript,omitempty"`
	Reply      string `json:"reply,omitempty"`
	Notice     string `json:"notice,omitempty"`
	Warning    string `json:"warning,omitempty"`
	MicEnabled bool   `json:"micEnabled"`
	Busy       bool   `json:"busy,omitempty"`
}

// session is the state of one connected page.
type session struct {
	mode       Mode
	recording  bool
	transcript string
	reply      string
	notice     string
	warning    string
}

func newSession() *session {
	return &session{mode: ModeText}
}

func (s *Server) view(sess *session, busy bool) View {
	return View{
		Mode:       sess.mode,
		Recording:  sess.recording,
		Transcript: sess.transcript,
		Reply:      sess.reply,
		Notice:     sess.notice,
		Warning:    sess.warning,
		MicEnabled: s.speech.MicEnabled(),
		Busy:       busy,
	}
}

// apply runs one event against sess. emit receives progress views while
// the event is still being handled.
func (s *Server) apply(ctx context.Context, sess *session, ev Event, emit func(View)) {
	sess.notice = ""
	sess.warning = ""

	switch ev.Type {
	case EventMode:
		switch ev.Mode {
		case ModeText, ModeSpeech:
			sess.mode = ev.Mode
		default:
			sess.warning = "Unknown input type."
			return
		}
		sess.reply = ""
		if sess.mode == ModeSpeech && !s.speech.MicEnabled() {
			sess.warning = noticeNoMic
		}

	case EventText:
		sess.mode = ModeText
		emit(View{Mode: sess.mode, Notice: noticeThinking, MicEnabled: s.speech.MicEnabled(), Busy: true})
		sess.reply = s.bot.Reply(ev.Text)

	case EventStart:
		sess.mode = ModeSpeech
		if !s.speech.MicEnabled() {
			sess.warning = noticeNoMic
			return
		}
		sess.recording = true
		sess.notice = noticeListening

	case EventStop:
		sess.mode = ModeSpeech
		if !s.speech.MicEnabled() {
			sess.warning = noticeNoMic
			return
		}
		sess.recording = false
		sess.notice = noticeCapturing
		emit(s.view(sess, true))
		sess.notice = ""

		text, err := s.speech.Listen(ctx)
		if err != nil {
			log.Info("Speech capture failed", "err", err)
			sess.transcript = speech.Message(err)
			sess.reply = ""
			return
		}

		sess.transcript = text
		sess.reply = s.bot.Reply(text)

	default:
		sess.warning = "Unknown action."
	}
}

// Package web serves the chat page and the websocket that drives it.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	log "log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"

	"talkbot/internal/speech"
)

const maxUpload = 25 << 20

type Replier interface {
	Reply(input string) string
}

type Speech interface {
	MicEnabled() bool
	CanTranscribe() bool
	Listen(ctx context.Context) (string, error)
	TranscribePCM(ctx context.Context, pcm []float32) (string, error)
}

// DecodeFunc turns an uploaded audio file into 16 kHz mono PCM.
type DecodeFunc func(r io.ReadSeeker, name string) ([]float32, error)

type Config struct {
	Title  string
	Bot    Replier
	Speech Speech
	Decode DecodeFunc
}

type Server struct {
	title  string
	bot    Replier
	speech Speech
	decode DecodeFunc

	upgrader websocket.Upgrader
	page     *template.Template
}

func NewServer(cfg Config) *Server {
	title := cfg.Title
	if title == "" {
		title = "Speech-Enabled Chatbot"
	}

	sp := cfg.Speech
	if sp == nil {
		sp = (*speech.Recognizer)(nil)
	}

	return &Server{
		title:  title,
		bot:    cfg.Bot,
		speech: sp,
		decode: cfg.Decode,
		page:   template.Must(template.New("page").Parse(pageHTML)),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /api/transcribe", s.handleTranscribe)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	return mux
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("Serving chat page", "addr", addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Title      string
		MicEnabled bool
		Upload     bool
	}{
		Title:      s.title,
		MicEnabled: s.speech.MicEnabled(),
		Upload:     s.decode != nil && s.speech.CanTranscribe(),
	}
	if err := s.page.Execute(w, data); err != nil {
		log.Error("Failed to render page", "err", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer c.Close()

	log.Debug("Page connected", "remote", r.RemoteAddr)

	sess := newSession()
	write := func(v View) {
		if err := c.WriteJSON(v); err != nil {
			log.Debug("Websocket write failed", "err", err)
		}
	}

	write(s.view(sess, false))

	for {
		var ev Event
		if err := c.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Websocket read failed", "err", err)
			}
			return
		}

		log.Debug("Page event", "type", ev.Type, "mode", ev.Mode)

		s.apply(r.Context(), sess, ev, write)
		write(s.view(sess, false))
	}
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	Reply      string `json:"reply,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.decode == nil || !s.speech.CanTranscribe() {
		writeJSON(w, http.StatusNotImplemented, transcribeResponse{Error: speech.MsgServiceFailed})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	f, hdr, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, transcribeResponse{Error: "missing audio file"})
		return
	}
	defer f.Close()

	pcm, err := s.decode(f, filepath.Base(hdr.Filename))
	if err != nil {
		log.Info("Upload not decodable", "file", hdr.Filename, "err", err)
		writeJSON(w, http.StatusUnsupportedMediaType, transcribeResponse{Error: "unsupported audio file"})
		return
	}

	text, err := s.speech.TranscribePCM(r.Context(), pcm)
	if err != nil {
		log.Info("Upload transcription failed", "file", hdr.Filename, "err", err)
		writeJSON(w, http.StatusOK, transcribeResponse{Transcript: speech.Message(err)})
		return
	}

	writeJSON(w, http.StatusOK, transcribeResponse{Transcript: text, Reply: s.bot.Reply(text)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Response write failed", "err", err)
	}
}

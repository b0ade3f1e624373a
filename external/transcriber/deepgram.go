package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"github.com/gorilla/websocket"
)

const (
	deepgramDefaultBaseURL = "wss://api.deepgram.com"
	deepgramListenPath     = "/v1/listen"
	deepgramDialTimeout    = 10 * time.Second
	keepAliveInterval      = 5 * time.Second
	eventQueueSize         = 64
)

var errDeepgramStreamClosed = errors.New("deepgram stream closed")

type DeepgramConfig struct {
	APIKey         string
	Model          string
	UtteranceEndMS int

	// BaseURL overrides the API endpoint. Leave empty for production.
	BaseURL string
}

type DeepgramTranscriber struct {
	apiKey         string
	model          string
	utteranceEndMS int
	baseURL        string
}

func NewDeepgramTranscriber(cfg DeepgramConfig) transcriber.Transcriber {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = deepgramDefaultBaseURL
	}
	return &DeepgramTranscriber{
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		utteranceEndMS: cfg.UtteranceEndMS,
		baseURL:        baseURL,
	}
}

func (t *DeepgramTranscriber) Open(ctx context.Context, language string) (transcriber.Stream, error) {
	endpoint, err := t.listenURL(language)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Authorization", "Token "+t.apiKey)

	dialer := websocket.Dialer{HandshakeTimeout: deepgramDialTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial deepgram: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial deepgram: %w", err)
	}
	slog.Info("deepgram stream opened", "model", t.model, "language", language, "sample_rate", audio.CaptureSampleRate, "utterance_end_ms", t.utteranceEndMS)

	s := &deepgramStream{
		conn:   conn,
		events: make(chan transcriber.Event, eventQueueSize),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	go s.keepAliveLoop()
	return s, nil
}

func (t *DeepgramTranscriber) listenURL(language string) (string, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse deepgram base url: %w", err)
	}
	u.Path = deepgramListenPath

	q := url.Values{}
	q.Set("model", t.model)
	q.Set("language", language)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(audio.CaptureSampleRate))
	q.Set("channels", strconv.Itoa(audio.Channels))
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("utterance_end_ms", strconv.Itoa(t.utteranceEndMS))
	q.Set("vad_events", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// deepgramStream is one live websocket connection. Binary frames carry PCM
// upstream; JSON messages come back and are mapped onto recognition events.
type deepgramStream struct {
	conn   *websocket.Conn
	events chan transcriber.Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *deepgramStream) Send(pcm []byte) error {
	if s.isDone() {
		return errDeepgramStreamClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, pcm)
}

func (s *deepgramStream) Events() <-chan transcriber.Event {
	return s.events
}

// Close tells the service to flush and end the stream, then tears the
// connection down. The read loop closes the events channel on its way out.
func (s *deepgramStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`))
		err = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	return err
}

func (s *deepgramStream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.isDone() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("deepgram closed the stream", "reason", err)
				s.emit(transcriber.Event{Type: transcriber.EventConnectionClosed})
				return
			}
			s.emit(transcriber.Event{Type: transcriber.EventError, Err: fmt.Errorf("read deepgram message: %w", err)})
			return
		}
		s.handleMessage(data)
	}
}

// deepgramMessage covers the fields used from Results and UtteranceEnd
// server messages.
type deepgramMessage struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (s *deepgramStream) handleMessage(data []byte) {
	var msg deepgramMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("undecodable deepgram message", "error", err)
		return
	}

	switch msg.Type {
	case "Results":
		transcript := ""
		if len(msg.Channel.Alternatives) > 0 {
			transcript = strings.TrimSpace(msg.Channel.Alternatives[0].Transcript)
		}
		if transcript == "" {
			return
		}
		if !msg.IsFinal {
			s.emit(transcriber.Event{Type: transcriber.EventPartial, Text: transcript})
			return
		}
		s.emit(transcriber.Event{Type: transcriber.EventFinalFragment, Text: transcript})
		if msg.SpeechFinal {
			s.emit(transcriber.Event{Type: transcriber.EventUtteranceEnd})
		}
	case "UtteranceEnd":
		s.emit(transcriber.Event{Type: transcriber.EventUtteranceEnd})
	case "Metadata", "SpeechStarted":
		// Housekeeping messages carry no transcript.
	default:
		slog.Debug("ignoring deepgram message", "type", msg.Type)
	}
}

func (s *deepgramStream) keepAliveLoop() {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"KeepAlive"}`))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *deepgramStream) emit(ev transcriber.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *deepgramStream) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

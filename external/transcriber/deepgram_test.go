package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"github.com/gorilla/websocket"
)

func newDeepgramTestServer(t *testing.T, handler func(conn *websocket.Conn, r *http.Request)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade websocket: %v", err)
			return
		}
		defer conn.Close()
		handler(conn, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func openTestStream(t *testing.T, srv *httptest.Server) transcriber.Stream {
	t.Helper()
	tr := NewDeepgramTranscriber(DeepgramConfig{
		APIKey:         "test-key",
		Model:          "nova-2",
		UtteranceEndMS: 1000,
		BaseURL:        "ws" + strings.TrimPrefix(srv.URL, "http"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := tr.Open(ctx, "ko")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	t.Cleanup(func() { _ = stream.Close() })
	return stream
}

func collectEvents(t *testing.T, stream transcriber.Stream, n int) []transcriber.Event {
	t.Helper()
	events := make([]transcriber.Event, 0, n)
	deadline := time.After(5 * time.Second)
	for len(events) < n {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				t.Fatalf("events channel closed after %d events, want %d", len(events), n)
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out after %d events, want %d", len(events), n)
		}
	}
	return events
}

func TestDeepgramStream_MapsServerMessages(t *testing.T) {
	messages := []string{
		`{"type":"Metadata","request_id":"abc"}`,
		`{"type":"Results","is_final":false,"channel":{"alternatives":[{"transcript":"안녕"}]}}`,
		`{"type":"Results","is_final":true,"speech_final":false,"channel":{"alternatives":[{"transcript":"안녕하세요"}]}}`,
		`{"type":"Results","is_final":true,"speech_final":true,"channel":{"alternatives":[{"transcript":"반갑습니다"}]}}`,
		`{"type":"Results","is_final":true,"channel":{"alternatives":[{"transcript":"  "}]}}`,
		`{"type":"UtteranceEnd","last_word_end":2.1}`,
	}
	srv := newDeepgramTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	stream := openTestStream(t, srv)

	want := []transcriber.Event{
		{Type: transcriber.EventPartial, Text: "안녕"},
		{Type: transcriber.EventFinalFragment, Text: "안녕하세요"},
		{Type: transcriber.EventFinalFragment, Text: "반갑습니다"},
		{Type: transcriber.EventUtteranceEnd},
		{Type: transcriber.EventUtteranceEnd},
	}
	got := collectEvents(t, stream, len(want))
	for i := range want {
		if got[i].Type != want[i].Type || got[i].Text != want[i].Text {
			t.Fatalf("event %d: got %v %q, want %v %q", i, got[i].Type, got[i].Text, want[i].Type, want[i].Text)
		}
	}
}

func TestDeepgramStream_ForwardsAudioWithAuthAndParams(t *testing.T) {
	var (
		mu       sync.Mutex
		auth     string
		query    url.Values
		received []byte
	)
	srv := newDeepgramTestServer(t, func(conn *websocket.Conn, r *http.Request) {
		mu.Lock()
		auth = r.Header.Get("Authorization")
		query = r.URL.Query()
		mu.Unlock()
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.BinaryMessage {
				mu.Lock()
				received = append(received, data...)
				mu.Unlock()
			}
		}
	})

	stream := openTestStream(t, srv)

	frame := []byte{1, 2, 3, 4}
	if err := stream.Send(frame); err != nil {
		t.Fatalf("send audio: %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == len(frame)
	}, "server never received the audio frame")

	mu.Lock()
	defer mu.Unlock()
	if !bytes.Equal(received, frame) {
		t.Fatalf("server received %v, want %v", received, frame)
	}
	if auth != "Token test-key" {
		t.Fatalf("authorization header is %q, want %q", auth, "Token test-key")
	}
	params := map[string]string{
		"model":            "nova-2",
		"language":         "ko",
		"encoding":         "linear16",
		"sample_rate":      "16000",
		"channels":         "1",
		"punctuate":        "true",
		"interim_results":  "true",
		"utterance_end_ms": "1000",
		"vad_events":       "true",
	}
	for key, want := range params {
		if got := query.Get(key); got != want {
			t.Fatalf("query param %s is %q, want %q", key, got, want)
		}
	}
}

func TestDeepgramStream_CloseRequestsStreamEnd(t *testing.T) {
	textMessages := make(chan string, 4)
	srv := newDeepgramTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if kind == websocket.TextMessage {
				textMessages <- string(data)
			}
		}
	})

	stream := openTestStream(t, srv)
	if err := stream.Close(); err != nil {
		t.Fatalf("close stream: %v", err)
	}
	if err := stream.Send([]byte{9}); err == nil {
		t.Fatal("send after close did not fail")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-textMessages:
			var msg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				t.Fatalf("unmarshal control message %q: %v", raw, err)
			}
			if msg.Type == "CloseStream" {
				return
			}
		case <-deadline:
			t.Fatal("server never saw a CloseStream message")
		}
	}
}

func TestDeepgramStream_RemoteCloseEndsEvents(t *testing.T) {
	srv := newDeepgramTestServer(t, func(conn *websocket.Conn, _ *http.Request) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	stream := openTestStream(t, srv)

	sawClosed := false
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-stream.Events():
			if !ok {
				if !sawClosed {
					t.Fatal("events ended without a connection-closed event")
				}
				return
			}
			switch ev.Type {
			case transcriber.EventConnectionClosed:
				sawClosed = true
			case transcriber.EventError:
				t.Fatalf("got error event %v, want connection-closed", ev.Err)
			}
		case <-deadline:
			t.Fatal("events channel never closed")
		}
	}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(message)
}

package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxseedlab/voicebridge/internal/webhook"
)

func testPayload() webhook.TranscriptPayload {
	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return webhook.TranscriptPayload{
		SchemaVersion:   webhook.TranscriptPayloadSchemaVersion,
		SessionID:       "session-1",
		SourceLanguage:  "ko",
		StartedAt:       startedAt,
		EndedAt:         startedAt.Add(2 * time.Minute),
		DurationSeconds: 120,
		UtteranceCount:  1,
		StopReason:      "operator quit command",
		Utterances: []webhook.TranscriptUtterance{
			{Index: 0, Offset: "00:00:15", SourceText: "안녕하세요", TargetLanguage: "en", TranslatedText: "Hello"},
		},
		Transcript: "00:00:15 [ko] 안녕하세요",
	}
}

func TestSendTranscript_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendTranscript(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendTranscript_PostsJSONPayload(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		gotBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendTranscript(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
	var decoded webhook.TranscriptPayload
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("body is not valid json: %v", err)
	}
	if decoded.SessionID != "session-1" {
		t.Fatalf("session id is %q, want %q", decoded.SessionID, "session-1")
	}
	if decoded.SchemaVersion != webhook.TranscriptPayloadSchemaVersion {
		t.Fatalf("schema version is %d, want %d", decoded.SchemaVersion, webhook.TranscriptPayloadSchemaVersion)
	}
	if len(decoded.Utterances) != 1 || decoded.Utterances[0].SourceText != "안녕하세요" {
		t.Fatalf("utterances did not round-trip: %+v", decoded.Utterances)
	}
}

func TestSendTranscript_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendTranscript(context.Background(), testPayload()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

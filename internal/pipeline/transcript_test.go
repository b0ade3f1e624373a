package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/voicebridge/internal/repository"
)

func transcriptFixture() (*repository.Session, time.Time, []repository.Utterance) {
	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	sess := &repository.Session{
		ID:             "session-1",
		SourceLanguage: "ko",
		StartedAt:      startedAt,
		Status:         repository.SessionStatusRunning,
	}
	utterances := []repository.Utterance{
		{UtteranceIndex: 0, SourceText: "안녕하세요", TargetLanguage: "en", TranslatedText: "Hello", SpokenAt: startedAt.Add(15 * time.Second)},
		{UtteranceIndex: 1, SourceText: "잘 지냈어요?", TargetLanguage: "de", TranslatedText: "Wie geht's?", SpokenAt: startedAt.Add(75 * time.Second)},
	}
	return sess, startedAt.Add(2 * time.Minute), utterances
}

func TestBuildTranscriptText(t *testing.T) {
	sess, endedAt, utterances := transcriptFixture()

	body := string(buildTranscriptText(sess, endedAt, utterances))

	if !strings.Contains(body, "Session: session-1") {
		t.Fatalf("session line not found in body: %s", body)
	}
	if !strings.Contains(body, "Source language: ko") {
		t.Fatalf("source language line not found in body: %s", body)
	}
	if !strings.Contains(body, "Period: 2026-03-14 09:00:00 ~ 2026-03-14 09:02:00 (UTC)") {
		t.Fatalf("period line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:00:15 [ko] 안녕하세요") {
		t.Fatalf("first source line not found in body: %s", body)
	}
	if !strings.Contains(body, "[en] Hello") {
		t.Fatalf("first translation line not found in body: %s", body)
	}
	if !strings.Contains(body, "00:01:15 [ko] 잘 지냈어요?") {
		t.Fatalf("second source line not found in body: %s", body)
	}
	if !strings.Contains(body, "[de] Wie geht's?") {
		t.Fatalf("second translation line not found in body: %s", body)
	}
}

func TestBuildTranscriptPayload(t *testing.T) {
	sess, endedAt, utterances := transcriptFixture()

	payload := buildTranscriptPayload(sess, endedAt, "operator quit command", utterances)

	if payload.SchemaVersion != 1 {
		t.Fatalf("schema version: got %d, want 1", payload.SchemaVersion)
	}
	if payload.SessionID != "session-1" || payload.SourceLanguage != "ko" {
		t.Fatalf("session fields: got %q/%q", payload.SessionID, payload.SourceLanguage)
	}
	if payload.DurationSeconds != 120 {
		t.Fatalf("duration: got %d, want 120", payload.DurationSeconds)
	}
	if payload.UtteranceCount != 2 || len(payload.Utterances) != 2 {
		t.Fatalf("utterance counts: got %d/%d, want 2/2", payload.UtteranceCount, len(payload.Utterances))
	}
	if payload.StopReason != "operator quit command" {
		t.Fatalf("stop reason: got %q", payload.StopReason)
	}
	first := payload.Utterances[0]
	if first.Offset != "00:00:15" || first.SourceText != "안녕하세요" || first.TranslatedText != "Hello" || first.TargetLanguage != "en" {
		t.Fatalf("first utterance: %+v", first)
	}
	if !strings.Contains(payload.Transcript, "[ko] 잘 지냈어요?") {
		t.Fatalf("transcript text missing source line: %s", payload.Transcript)
	}
}

func TestBuildTranscriptPayload_ClampsNegativeOffsets(t *testing.T) {
	sess, endedAt, utterances := transcriptFixture()
	utterances[0].SpokenAt = sess.StartedAt.Add(-5 * time.Second)

	payload := buildTranscriptPayload(sess, endedAt, "shutdown signal", utterances)
	if payload.Utterances[0].Offset != "00:00:00" {
		t.Fatalf("offset: got %q, want 00:00:00", payload.Utterances[0].Offset)
	}
}

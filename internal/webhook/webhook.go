package webhook

import (
	"context"
	"time"
)

const TranscriptPayloadSchemaVersion = 1

// TranscriptUtterance is one utterance in the exported transcript.
type TranscriptUtterance struct {
	Index          int    `json:"index"`
	Offset         string `json:"offset"`
	SourceText     string `json:"source_text"`
	TargetLanguage string `json:"target_language"`
	TranslatedText string `json:"translated_text"`
}

// TranscriptPayload is the session summary posted when a run ends.
type TranscriptPayload struct {
	SchemaVersion   int                   `json:"schema_version"`
	SessionID       string                `json:"session_id"`
	SourceLanguage  string                `json:"source_language"`
	StartedAt       time.Time             `json:"started_at"`
	EndedAt         time.Time             `json:"ended_at"`
	DurationSeconds int64                 `json:"duration_seconds"`
	UtteranceCount  int                   `json:"utterance_count"`
	StopReason      string                `json:"stop_reason"`
	Utterances      []TranscriptUtterance `json:"utterances"`
	Transcript      string                `json:"transcript"`
}

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptPayload) error
}

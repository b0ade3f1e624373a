package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	SourceLanguage string
	StartedAt      time.Time
}

type CompleteSessionInput struct {
	SessionID string
	EndedAt   time.Time
}

type SaveSessionOutputInput struct {
	SessionID          string
	StopReason         string
	DurationSeconds    int64
	UtteranceCount     int
	TranscriptText     string
	WebhookPayloadJSON []byte
}

type InsertUtteranceInput struct {
	SessionID      string
	UtteranceIndex int
	SourceText     string
	TargetLanguage string
	TranslatedText string
	Degraded       bool
	TranslateMS    int64
	SynthesizeMS   int64
	PlaybackMS     int64
	SpokenAt       time.Time
}

type SessionRepository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	UpdateSessionCompleted(ctx context.Context, input CompleteSessionInput) error
	SaveSessionOutput(ctx context.Context, input SaveSessionOutputInput) error
}

type UtteranceRepository interface {
	InsertUtterance(ctx context.Context, input InsertUtteranceInput) error
	ListUtterancesBySessionID(ctx context.Context, sessionID string) ([]Utterance, error)
}

type Repository interface {
	SessionRepository
	UtteranceRepository
}

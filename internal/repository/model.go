package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

type Session struct {
	ID              string
	SourceLanguage  string
	StartedAt       time.Time
	EndedAt         *time.Time
	Status          SessionStatus
	StopReason      string
	DurationSeconds int64
	UtteranceCount  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Utterance struct {
	ID             string
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
	CreatedAt      time.Time
}

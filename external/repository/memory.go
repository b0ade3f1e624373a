package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foxseedlab/voicebridge/internal/repository"
	"github.com/google/uuid"
)

// MemoryRepository keeps sessions and utterances in process memory. It backs
// runs without a configured database; everything is lost on exit.
type MemoryRepository struct {
	mu         sync.Mutex
	sessions   map[string]*repository.Session
	utterances map[string][]repository.Utterance
}

func NewMemoryRepository() repository.Repository {
	return &MemoryRepository{
		sessions:   make(map[string]*repository.Session),
		utterances: make(map[string][]repository.Utterance),
	}
}

func (r *MemoryRepository) CreateSession(_ context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	s := &repository.Session{
		ID:             uuid.NewString(),
		SourceLanguage: input.SourceLanguage,
		StartedAt:      input.StartedAt,
		Status:         repository.SessionStatusRunning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.sessions[s.ID] = s
	copied := *s
	return &copied, nil
}

func (r *MemoryRepository) UpdateSessionCompleted(_ context.Context, input repository.CompleteSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[input.SessionID]
	if !ok {
		return fmt.Errorf("session %s not found", input.SessionID)
	}
	endedAt := input.EndedAt
	s.Status = repository.SessionStatusCompleted
	s.EndedAt = &endedAt
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) SaveSessionOutput(_ context.Context, input repository.SaveSessionOutputInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[input.SessionID]
	if !ok {
		return fmt.Errorf("session %s not found", input.SessionID)
	}
	s.StopReason = input.StopReason
	s.DurationSeconds = input.DurationSeconds
	s.UtteranceCount = input.UtteranceCount
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) InsertUtterance(_ context.Context, input repository.InsertUtteranceInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[input.SessionID]; !ok {
		return fmt.Errorf("session %s not found", input.SessionID)
	}
	r.utterances[input.SessionID] = append(r.utterances[input.SessionID], repository.Utterance{
		ID:             uuid.NewString(),
		SessionID:      input.SessionID,
		UtteranceIndex: input.UtteranceIndex,
		SourceText:     input.SourceText,
		TargetLanguage: input.TargetLanguage,
		TranslatedText: input.TranslatedText,
		Degraded:       input.Degraded,
		TranslateMS:    input.TranslateMS,
		SynthesizeMS:   input.SynthesizeMS,
		PlaybackMS:     input.PlaybackMS,
		SpokenAt:       input.SpokenAt,
		CreatedAt:      time.Now().UTC(),
	})
	return nil
}

func (r *MemoryRepository) ListUtterancesBySessionID(_ context.Context, sessionID string) ([]repository.Utterance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.utterances[sessionID]
	list := make([]repository.Utterance, len(stored))
	copy(list, stored)
	sort.Slice(list, func(i, j int) bool { return list[i].UtteranceIndex < list[j].UtteranceIndex })
	return list, nil
}

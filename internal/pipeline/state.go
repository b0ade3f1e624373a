package pipeline

import (
	"fmt"
	"sync"

	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/translator"
)

var voiceByLanguage = map[string]string{
	"en": "en-US-GuyNeural",
	"de": "de-DE-ConradNeural",
}

// targetRotation is the order the toggle command cycles through.
var targetRotation = []string{"en", "de"}

// Snapshot freezes every language-dependent setting for one sentence. A
// sentence picked up for processing keeps its snapshot even when the
// operator toggles the target language mid-flight.
type Snapshot struct {
	Version        int
	SourceLanguage string
	TargetLanguage string
	Voice          string
	Rate           string
	Instruction    string
}

type State struct {
	mu      sync.Mutex
	version int
	source  string
	rate    string
	idx     int
}

func NewState(cfg *config.Config) (*State, error) {
	idx := -1
	for i, lang := range targetRotation {
		if lang == cfg.TargetLanguage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("target language %q has no synthesis voice", cfg.TargetLanguage)
	}
	return &State{source: cfg.SourceLanguage, rate: cfg.TTSRate, idx: idx}, nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ToggleTarget advances to the next target language and returns the new
// settings. Only sentences picked up afterwards see the change.
func (s *State) ToggleTarget() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = (s.idx + 1) % len(targetRotation)
	s.version++
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	target := targetRotation[s.idx]
	return Snapshot{
		Version:        s.version,
		SourceLanguage: s.source,
		TargetLanguage: target,
		Voice:          voiceByLanguage[target],
		Rate:           s.rate,
		Instruction:    translator.Instruction(s.source, target),
	}
}

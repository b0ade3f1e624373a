package pipeline

import (
	"strings"
	"sync"
)

// Assembler collects final transcript fragments and closes them into whole
// sentences at utterance boundaries. Completed sentences queue in arrival
// order until the processing loop picks them up.
type Assembler struct {
	mu        sync.Mutex
	fragments []string
	pending   []string
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// AddFragment appends one final transcript fragment to the sentence under
// construction. Whitespace-only fragments are ignored.
func (a *Assembler) AddFragment(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	a.mu.Lock()
	a.fragments = append(a.fragments, trimmed)
	a.mu.Unlock()
}

// FinishSentence closes the sentence under construction and queues it. It
// reports the completed sentence, or false when the utterance held no speech.
func (a *Assembler) FinishSentence() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	sentence := strings.TrimSpace(strings.Join(a.fragments, " "))
	a.fragments = nil
	if sentence == "" {
		return "", false
	}
	a.pending = append(a.pending, sentence)
	return sentence, true
}

// NextSentence pops the oldest completed sentence.
func (a *Assembler) NextSentence() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.pending) == 0 {
		return "", false
	}
	sentence := a.pending[0]
	a.pending = a.pending[1:]
	return sentence, true
}

func (a *Assembler) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Clear drops the sentence under construction and every queued sentence.
// A sentence already handed to the processing loop is unaffected.
func (a *Assembler) Clear() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	dropped := len(a.pending)
	a.fragments = nil
	a.pending = nil
	return dropped
}

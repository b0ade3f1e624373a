package console

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/voicebridge/internal/console"
)

const (
	bannerWidth     = 60
	partialMaxWidth = 78
)

var languageDisplayNames = map[string]string{
	"ko": "Korean",
	"en": "English",
	"de": "German",
}

func displayName(code string) string {
	if name, ok := languageDisplayNames[code]; ok {
		return name
	}
	return code
}

// Terminal renders pipeline progress to one output writer and turns
// single-key input into commands. Partial transcripts are drawn on a single
// line and overwritten in place; any finished line first clears them.
type Terminal struct {
	out      io.Writer
	commands chan console.Command
	done     chan struct{}

	mu          sync.Mutex
	partialLive bool

	closeOnce sync.Once
}

func NewTerminal(in io.Reader, out io.Writer) console.Console {
	t := &Terminal{
		out:      out,
		commands: make(chan console.Command, 8),
		done:     make(chan struct{}),
	}
	go t.readCommands(in)
	return t
}

func (t *Terminal) readCommands(in io.Reader) {
	defer close(t.commands)
	reader := bufio.NewReader(in)
	for {
		r, _, err := reader.ReadRune()
		if err != nil {
			if err != io.EOF {
				slog.Warn("console input read failed", "error", err)
			}
			return
		}

		var cmd console.Command
		switch r {
		case 'q', 'Q':
			cmd = console.CommandQuit
		case 'l', 'L':
			cmd = console.CommandToggleLanguage
		case 'c', 'C':
			cmd = console.CommandClearPending
		default:
			continue
		}

		select {
		case t.commands <- cmd:
		case <-t.done:
			return
		}
		if cmd == console.CommandQuit {
			return
		}
	}
}

func (t *Terminal) Commands() <-chan console.Command {
	return t.commands
}

func (t *Terminal) ShowBanner(sourceLanguage, targetLanguage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rule := strings.Repeat("=", bannerWidth)
	fmt.Fprintf(t.out, "\n%s\n", rule)
	fmt.Fprintf(t.out, "VoiceBridge | Target: %s | Status: Listening\n", displayName(targetLanguage))
	fmt.Fprintf(t.out, "%s\n", rule)
	fmt.Fprintln(t.out, "Commands: [q]uit | [l]anguage toggle | [c]lear buffer")
	fmt.Fprintf(t.out, "%s\n\n", rule)
	fmt.Fprintf(t.out, "[SYSTEM] Pipeline started. Start speaking in %s...\n\n", displayName(sourceLanguage))
}

func (t *Terminal) ShowTargetLanguage(targetLanguage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPartialLocked()
	fmt.Fprintf(t.out, "\n[SYSTEM] Language toggled to %s\n\n", displayName(targetLanguage))
}

func (t *Terminal) ShowPartial(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	line := "[...] " + text
	if runes := []rune(line); len(runes) > partialMaxWidth {
		line = string(runes[:partialMaxWidth])
	}
	fmt.Fprintf(t.out, "\r%s\r", strings.Repeat(" ", partialMaxWidth))
	fmt.Fprint(t.out, line)
	t.partialLive = true
}

func (t *Terminal) ShowRecognized(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPartialLocked()
	fmt.Fprintf(t.out, "[STT] %s\n", text)
}

func (t *Terminal) ShowTranslated(_, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPartialLocked()
	fmt.Fprintf(t.out, "[TRS] %s\n", text)
}

func (t *Terminal) ShowLatency(total, translate, synthesize, playback time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPartialLocked()
	fmt.Fprintf(t.out, "[LATENCY] Total: %.2fs (Translate: %.2fs, TTS: %.2fs, Playback: %.2fs)\n\n",
		total.Seconds(), translate.Seconds(), synthesize.Seconds(), playback.Seconds())
}

func (t *Terminal) ShowNotice(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearPartialLocked()
	fmt.Fprintf(t.out, "\n[SYSTEM] %s\n", line)
}

func (t *Terminal) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
	})
	return nil
}

func (t *Terminal) clearPartialLocked() {
	if !t.partialLive {
		return
	}
	fmt.Fprintf(t.out, "\r%s\r", strings.Repeat(" ", partialMaxWidth))
	t.partialLive = false
}

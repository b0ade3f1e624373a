package console

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/voicebridge/internal/console"
)

func readCommand(t *testing.T, ch <-chan console.Command) (console.Command, bool) {
	t.Helper()
	select {
	case cmd, ok := <-ch:
		return cmd, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command")
		return 0, false
	}
}

func TestTerminal_MapsKeysToCommands(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("x\nl c q"), &out)
	defer term.Close()

	want := []console.Command{
		console.CommandToggleLanguage,
		console.CommandClearPending,
		console.CommandQuit,
	}
	for _, wantCmd := range want {
		cmd, ok := readCommand(t, term.Commands())
		if !ok {
			t.Fatalf("command channel closed before %v", wantCmd)
		}
		if cmd != wantCmd {
			t.Fatalf("command = %v, want %v", cmd, wantCmd)
		}
	}

	if _, ok := readCommand(t, term.Commands()); ok {
		t.Fatal("command channel still open after quit")
	}
}

func TestTerminal_ClosesCommandsOnInputEnd(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("zz\n"), &out)
	defer term.Close()

	if cmd, ok := readCommand(t, term.Commands()); ok {
		t.Fatalf("unexpected command %v from unknown keys", cmd)
	}
}

func TestTerminal_RecognizedClearsPartial(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out).(*Terminal)
	defer term.Close()

	term.ShowPartial("안녕")
	term.ShowRecognized("안녕하세요")

	got := out.String()
	if !strings.Contains(got, "[...] 안녕") {
		t.Fatalf("output missing partial line: %q", got)
	}
	if !strings.Contains(got, "\r") {
		t.Fatalf("partial line not drawn with carriage return: %q", got)
	}
	if !strings.Contains(got, "[STT] 안녕하세요\n") {
		t.Fatalf("output missing recognized line: %q", got)
	}
}

func TestTerminal_LineFormats(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(""), &out).(*Terminal)
	defer term.Close()

	term.ShowBanner("ko", "en")
	term.ShowTranslated("en", "Hello there")
	term.ShowLatency(2500*time.Millisecond, time.Second, 500*time.Millisecond, time.Second)
	term.ShowTargetLanguage("de")
	term.ShowNotice("Buffer cleared.")

	got := out.String()
	for _, want := range []string{
		"VoiceBridge | Target: English | Status: Listening",
		"Commands: [q]uit | [l]anguage toggle | [c]lear buffer",
		"Start speaking in Korean...",
		"[TRS] Hello there\n",
		"[LATENCY] Total: 2.50s (Translate: 1.00s, TTS: 0.50s, Playback: 1.00s)\n",
		"[SYSTEM] Language toggled to German\n",
		"[SYSTEM] Buffer cleared.\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

package console

import "time"

// Command is one interactive operator command.
type Command int

const (
	CommandQuit Command = iota
	CommandToggleLanguage
	CommandClearPending
)

func (c Command) String() string {
	switch c {
	case CommandQuit:
		return "quit"
	case CommandToggleLanguage:
		return "toggle-language"
	case CommandClearPending:
		return "clear-pending"
	default:
		return "unknown"
	}
}

// Console is the operator-facing terminal surface. Recognition and
// translation lines go here; everything else goes to the structured log.
type Console interface {
	// Commands yields operator commands until the input stream ends.
	Commands() <-chan Command
	ShowBanner(sourceLanguage, targetLanguage string)
	ShowTargetLanguage(targetLanguage string)
	ShowPartial(text string)
	ShowRecognized(text string)
	ShowTranslated(targetLanguage, text string)
	ShowLatency(total, translate, synthesize, playback time.Duration)
	ShowNotice(line string)
	Close() error
}

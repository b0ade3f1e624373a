package transcriber

import "context"

type EventType int

const (
	EventPartial EventType = iota
	EventFinalFragment
	EventUtteranceEnd
	EventConnectionClosed
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventPartial:
		return "partial"
	case EventFinalFragment:
		return "final_fragment"
	case EventUtteranceEnd:
		return "utterance_end"
	case EventConnectionClosed:
		return "connection_closed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one recognition update or connection signal. Text is set for
// partial and final-fragment events, Err for error events.
type Event struct {
	Type EventType
	Text string
	Err  error
}

// Stream is a single live connection to the transcription service. The
// Events channel is closed when the connection ends, whatever the cause.
type Stream interface {
	Send(pcm []byte) error
	Events() <-chan Event
	Close() error
}

type Transcriber interface {
	Open(ctx context.Context, language string) (Stream, error)
}

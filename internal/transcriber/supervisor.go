package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateClosing
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	defaultMaxReconnects  = 3
	defaultReconnectDelay = time.Second
	eventBufferSize       = 64
)

var (
	ErrReconnectsExhausted = errors.New("transcript stream reconnect attempts exhausted")
	ErrStreamUnavailable   = errors.New("transcript stream unavailable")
	ErrAlreadyStarted      = errors.New("transcript stream already started")
)

type SupervisorConfig struct {
	Language       string
	MaxReconnects  int
	ReconnectDelay time.Duration

	// OnReconnect, when set, observes every reconnect attempt.
	OnReconnect func(attempt int)
}

// Supervisor owns the connection lifecycle over a Transcriber: it opens the
// stream, pumps its events downstream, and reconnects on unexpected close
// with a fixed delay and a bounded attempt budget. The budget refills only
// once a reconnected stream delivers a recognition event; a close storm
// therefore exhausts after MaxReconnects attempts and surfaces an error
// event. A caller-initiated Close never triggers reconnection.
type Supervisor struct {
	transcriber    Transcriber
	language       string
	maxReconnects  int
	reconnectDelay time.Duration
	onReconnect    func(attempt int)

	mu      sync.Mutex
	state   State
	current Stream
	retries int
	closing bool
	started bool

	events chan Event
	closed chan struct{}
}

func NewSupervisor(t Transcriber, cfg SupervisorConfig) *Supervisor {
	maxReconnects := cfg.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = defaultMaxReconnects
	}
	delay := cfg.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	return &Supervisor{
		transcriber:    t,
		language:       cfg.Language,
		maxReconnects:  maxReconnects,
		reconnectDelay: delay,
		onReconnect:    cfg.OnReconnect,
		state:          StateDisconnected,
		events:         make(chan Event, eventBufferSize),
		closed:         make(chan struct{}),
	}
}

// Connect dials the initial stream and starts the supervision loop.
func (s *Supervisor) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.state = StateConnecting
	s.mu.Unlock()

	stream, err := s.transcriber.Open(ctx, s.language)
	if err != nil {
		s.setState(StateDisconnected)
		return fmt.Errorf("open transcript stream: %w", err)
	}

	s.mu.Lock()
	if s.closing {
		s.state = StateDisconnected
		s.mu.Unlock()
		_ = stream.Close()
		return ErrStreamUnavailable
	}
	s.current = stream
	s.state = StateConnected
	s.mu.Unlock()
	slog.Info("transcript stream connected", "language", s.language)

	go s.run(ctx, stream)
	return nil
}

// Events yields recognition and connection events in arrival order. The
// channel is closed once the supervisor stops for any reason.
func (s *Supervisor) Events() <-chan Event {
	return s.events
}

// Send forwards one PCM chunk to the live stream. It fails fast instead of
// blocking while the stream is reconnecting, failed, or closed.
func (s *Supervisor) Send(pcm []byte) error {
	s.mu.Lock()
	stream := s.current
	state := s.state
	s.mu.Unlock()
	if state != StateConnected || stream == nil {
		return ErrStreamUnavailable
	}
	return stream.Send(pcm)
}

// Close ends the stream and suppresses any further reconnection, including
// an attempt already waiting out its delay.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	if s.state != StateFailed {
		s.state = StateClosing
	}
	stream := s.current
	s.mu.Unlock()

	close(s.closed)
	if stream != nil {
		return stream.Close()
	}
	return nil
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Supervisor) run(ctx context.Context, stream Stream) {
	defer close(s.events)
	for {
		s.consume(stream)
		_ = stream.Close()

		s.mu.Lock()
		s.current = nil
		if s.closing {
			s.state = StateDisconnected
			s.mu.Unlock()
			return
		}
		if s.retries >= s.maxReconnects {
			s.state = StateFailed
			s.mu.Unlock()
			slog.Error("transcript stream closed again after exhausting reconnects", "max_reconnects", s.maxReconnects)
			s.emit(Event{Type: EventError, Err: ErrReconnectsExhausted})
			return
		}
		s.retries++
		attempt := s.retries
		s.state = StateReconnecting
		s.mu.Unlock()

		slog.Warn("transcript stream closed unexpectedly; reconnecting",
			"attempt", attempt, "max_reconnects", s.maxReconnects, "delay", s.reconnectDelay)
		if s.onReconnect != nil {
			s.onReconnect(attempt)
		}
		select {
		case <-ctx.Done():
			s.setState(StateDisconnected)
			return
		case <-s.closed:
			s.setState(StateDisconnected)
			return
		case <-time.After(s.reconnectDelay):
		}

		next, err := s.transcriber.Open(ctx, s.language)
		if err != nil {
			slog.Error("transcript stream reconnect failed", "error", err, "attempt", attempt)
			s.setState(StateDisconnected)
			s.emit(Event{Type: EventError, Err: fmt.Errorf("reconnect transcript stream: %w", err)})
			return
		}

		s.mu.Lock()
		s.current = next
		s.state = StateConnected
		s.mu.Unlock()
		slog.Info("transcript stream reconnected", "attempt", attempt)
		stream = next
	}
}

// consume pumps one stream's events downstream until it ends. Recognition
// traffic proves the connection live and refills the reconnect budget.
func (s *Supervisor) consume(stream Stream) {
	for ev := range stream.Events() {
		switch ev.Type {
		case EventPartial, EventFinalFragment, EventUtteranceEnd:
			s.markLive()
			s.emit(ev)
		case EventConnectionClosed:
			s.emit(ev)
			return
		case EventError:
			s.emit(ev)
		}
	}
}

func (s *Supervisor) markLive() {
	s.mu.Lock()
	s.retries = 0
	s.mu.Unlock()
}

func (s *Supervisor) emit(ev Event) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing {
		return
	}
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}

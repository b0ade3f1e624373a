package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

const defaultChunkQueueDepth = 32

var ErrSourceNotStarted = errors.New("audio source not started")

// Source bridges the driver's real-time capture callback into a pollable
// channel of PCM chunks. The callback never blocks: when the channel is
// full the newest chunk is dropped and capture continues.
type Source struct {
	driver     Driver
	deviceID   int
	queueDepth int

	mu        sync.Mutex
	stream    InputStream
	listeners []CaptureFunc

	chunks   chan []byte
	dropped  atomic.Int64
	captured atomic.Int64
	overruns atomic.Int64
}

func NewSource(driver Driver, deviceID int) *Source {
	return &Source{
		driver:     driver,
		deviceID:   deviceID,
		queueDepth: defaultChunkQueueDepth,
		chunks:     make(chan []byte, defaultChunkQueueDepth),
	}
}

// OnChunk registers an additional listener invoked synchronously from the
// capture context. Must be called before Start.
func (s *Source) OnChunk(fn CaptureFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return nil
	}
	stream, err := s.driver.OpenInput(ctx, s.deviceID, CaptureSampleRate, Channels, ChunkSamples, s.handleChunk)
	if err != nil {
		return fmt.Errorf("open input stream: %w", err)
	}
	s.stream = stream
	slog.Info("audio capture started", "device_id", s.deviceID, "sample_rate", CaptureSampleRate, "chunk_samples", ChunkSamples)
	return nil
}

func (s *Source) handleChunk(pcm []byte, status CaptureStatus) {
	if status.InputOverflow {
		n := s.overruns.Add(1)
		if n == 1 || n%100 == 0 {
			slog.Warn("capture input overflow", "total_overflows", n)
		}
	}
	s.captured.Add(1)

	// The driver reuses its callback buffer between invocations.
	chunk := make([]byte, len(pcm))
	copy(chunk, pcm)
	select {
	case s.chunks <- chunk:
	default:
		s.dropped.Add(1)
		status.Dropped = true
	}

	s.mu.Lock()
	listeners := s.listeners
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(pcm, status)
	}
}

// NextChunk returns the oldest buffered chunk, blocking until one arrives
// or the context ends.
func (s *Source) NextChunk(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case chunk := <-s.chunks:
		return chunk, nil
	}
}

func (s *Source) Stop() error {
	s.mu.Lock()
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()
	if stream == nil {
		return ErrSourceNotStarted
	}
	slog.Info("audio capture stopped",
		"captured_chunks", s.captured.Load(),
		"dropped_chunks", s.dropped.Load(),
		"input_overflows", s.overruns.Load())
	return stream.Close()
}

func (s *Source) CapturedChunks() int64 { return s.captured.Load() }
func (s *Source) DroppedChunks() int64  { return s.dropped.Load() }

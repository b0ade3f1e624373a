package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sink plays PCM through the output device. A process-wide mutex serializes
// playback so two calls can never produce overlapping audio; the lock is
// released on every exit path.
type Sink struct {
	driver   Driver
	deviceID int

	playMu sync.Mutex
}

func NewSink(driver Driver, deviceID int) *Sink {
	return &Sink{driver: driver, deviceID: deviceID}
}

// Play blocks until the audio has finished. Empty input returns immediately.
func (s *Sink) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	s.playMu.Lock()
	defer s.playMu.Unlock()

	start := time.Now()
	if err := s.driver.Play(ctx, pcm, PlaybackSampleRate, s.deviceID); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	slog.Debug("playback finished", "pcm_bytes", len(pcm), "elapsed", time.Since(start))
	return nil
}

// Stop halts any in-progress playback immediately.
func (s *Sink) Stop() {
	s.driver.StopPlayback()
}

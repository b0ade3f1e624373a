package audio

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeDriver struct {
	mu            sync.Mutex
	capture       CaptureFunc
	openErr       error
	playErr       error
	playDelay     time.Duration
	playCalls     [][]byte
	playWindows   [][2]time.Time
	activePlays   int
	maxConcurrent int
	stopCalls     int
}

type fakeInputStream struct {
	closed bool
}

func (s *fakeInputStream) Close() error {
	s.closed = true
	return nil
}

func (d *fakeDriver) OpenInput(_ context.Context, _, _, _, _ int, fn CaptureFunc) (InputStream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.mu.Lock()
	d.capture = fn
	d.mu.Unlock()
	return &fakeInputStream{}, nil
}

func (d *fakeDriver) Play(_ context.Context, pcm []byte, _, _ int) error {
	d.mu.Lock()
	d.activePlays++
	if d.activePlays > d.maxConcurrent {
		d.maxConcurrent = d.activePlays
	}
	start := time.Now()
	d.mu.Unlock()

	if d.playDelay > 0 {
		time.Sleep(d.playDelay)
	}

	d.mu.Lock()
	d.activePlays--
	d.playCalls = append(d.playCalls, pcm)
	d.playWindows = append(d.playWindows, [2]time.Time{start, time.Now()})
	d.mu.Unlock()
	return d.playErr
}

func (d *fakeDriver) StopPlayback() {
	d.mu.Lock()
	d.stopCalls++
	d.mu.Unlock()
}

func (d *fakeDriver) ListDevices() ([]Device, error) { return nil, nil }
func (d *fakeDriver) Terminate() error               { return nil }

func (d *fakeDriver) emit(t *testing.T, pcm []byte, status CaptureStatus) {
	t.Helper()
	d.mu.Lock()
	fn := d.capture
	d.mu.Unlock()
	if fn == nil {
		t.Fatal("capture callback not registered")
	}
	fn(pcm, status)
}

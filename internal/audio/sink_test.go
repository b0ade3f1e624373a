package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSink_PlaybackNeverOverlaps(t *testing.T) {
	driver := &fakeDriver{playDelay: 50 * time.Millisecond}
	sink := NewSink(driver, DefaultDeviceID)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Play(context.Background(), []byte{1, 0})
		}()
	}
	wg.Wait()

	driver.mu.Lock()
	defer driver.mu.Unlock()
	if driver.maxConcurrent != 1 {
		t.Fatalf("observed %d concurrent playbacks, want 1", driver.maxConcurrent)
	}
	if len(driver.playWindows) != 2 {
		t.Fatalf("expected 2 playbacks, got %d", len(driver.playWindows))
	}
	first, second := driver.playWindows[0], driver.playWindows[1]
	if second[0].Before(first[1]) {
		t.Fatalf("second playback started %v before first finished %v", second[0], first[1])
	}
}

func TestSink_EmptyPCMSkipsDriver(t *testing.T) {
	driver := &fakeDriver{}
	sink := NewSink(driver, DefaultDeviceID)

	if err := sink.Play(context.Background(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(driver.playCalls) != 0 {
		t.Fatalf("expected no driver calls, got %d", len(driver.playCalls))
	}
}

func TestSink_LockReleasedAfterFailure(t *testing.T) {
	driver := &fakeDriver{playErr: errors.New("device gone")}
	sink := NewSink(driver, DefaultDeviceID)

	if err := sink.Play(context.Background(), []byte{1, 0}); err == nil {
		t.Fatal("expected playback error")
	}

	done := make(chan error, 1)
	go func() {
		done <- sink.Play(context.Background(), []byte{1, 0})
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected playback error")
		}
	case <-time.After(time.Second):
		t.Fatal("second playback blocked; lock not released after failure")
	}
}

func TestSink_StopForwardsToDriver(t *testing.T) {
	driver := &fakeDriver{}
	sink := NewSink(driver, DefaultDeviceID)
	sink.Stop()
	if driver.stopCalls != 1 {
		t.Fatalf("expected 1 stop call, got %d", driver.stopCalls)
	}
}

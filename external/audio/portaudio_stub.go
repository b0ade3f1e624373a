//go:build !portaudio

package audio

import (
	"context"
	"errors"

	"github.com/foxseedlab/voicebridge/internal/audio"
)

// Device access needs cgo and the PortAudio library. Builds without the
// portaudio tag get a driver that fails loudly instead of capturing silence.
var errPortAudioUnavailable = errors.New("portaudio support not compiled in; rebuild with -tags portaudio")

type stubDriver struct{}

func NewPortAudioDriver() audio.Driver {
	return &stubDriver{}
}

func (d *stubDriver) OpenInput(_ context.Context, _, _, _, _ int, _ audio.CaptureFunc) (audio.InputStream, error) {
	return nil, errPortAudioUnavailable
}

func (d *stubDriver) Play(_ context.Context, _ []byte, _, _ int) error {
	return errPortAudioUnavailable
}

func (d *stubDriver) StopPlayback() {}

func (d *stubDriver) ListDevices() ([]audio.Device, error) {
	return nil, errPortAudioUnavailable
}

func (d *stubDriver) Terminate() error {
	return nil
}

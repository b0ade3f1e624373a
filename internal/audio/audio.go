package audio

import "context"

const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 24000
	Channels           = 1
	ChunkSamples       = 4096
	ChunkBytes         = ChunkSamples * 2
)

type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// CaptureStatus carries per-chunk capture conditions. An overflow means the
// driver discarded samples before the callback ran; Dropped means the bridge
// queue was full and this chunk was discarded after listeners saw it.
type CaptureStatus struct {
	InputOverflow bool
	Dropped       bool
}

type CaptureFunc func(pcm []byte, status CaptureStatus)

type InputStream interface {
	Close() error
}

// DefaultDeviceID selects the system default input or output device.
const DefaultDeviceID = -1

type Driver interface {
	OpenInput(ctx context.Context, deviceID, sampleRate, channels, chunkSamples int, fn CaptureFunc) (InputStream, error)
	Play(ctx context.Context, pcm []byte, sampleRate, deviceID int) error
	StopPlayback()
	ListDevices() ([]Device, error)
	Terminate() error
}

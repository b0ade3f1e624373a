//go:build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/gordonklaus/portaudio"
)

// playbackFrameSamples is the write granularity during playback. Small
// frames keep StopPlayback responsive.
const playbackFrameSamples = 1024

type PortAudioDriver struct {
	initOnce sync.Once
	initErr  error
	initDone atomic.Bool
	stopped  atomic.Bool
}

func NewPortAudioDriver() audio.Driver {
	return &PortAudioDriver{}
}

func (d *PortAudioDriver) ensureInit() error {
	d.initOnce.Do(func() {
		d.initErr = portaudio.Initialize()
		d.initDone.Store(d.initErr == nil)
	})
	return d.initErr
}

func (d *PortAudioDriver) OpenInput(_ context.Context, deviceID, sampleRate, channels, chunkSamples int, fn audio.CaptureFunc) (audio.InputStream, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	dev, err := d.inputDevice(deviceID)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = channels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = chunkSamples

	buf := make([]int16, chunkSamples*channels)
	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return nil, fmt.Errorf("open portaudio input: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("start portaudio input: %w", err)
	}
	slog.Info("microphone capture started", "device", dev.Name, "sample_rate", sampleRate, "chunk_samples", chunkSamples)

	in := &inputStream{stream: stream, done: make(chan struct{})}
	go in.captureLoop(buf, fn)
	return in, nil
}

type inputStream struct {
	stream    *portaudio.Stream
	done      chan struct{}
	closeOnce sync.Once
}

func (s *inputStream) captureLoop(buf []int16, fn audio.CaptureFunc) {
	pcm := make([]byte, len(buf)*2)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		err := s.stream.Read()
		overflow := false
		if err != nil {
			if !errors.Is(err, portaudio.InputOverflowed) {
				select {
				case <-s.done:
				default:
					slog.Error("microphone read failed", "error", err)
				}
				return
			}
			overflow = true
		}
		for i, sample := range buf {
			pcm[i*2] = byte(sample)
			pcm[i*2+1] = byte(sample >> 8)
		}
		fn(pcm, audio.CaptureStatus{InputOverflow: overflow})
	}
}

func (s *inputStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.stream.Stop()
		if cerr := s.stream.Close(); err == nil {
			err = cerr
		}
	})
	return err
}

func (d *PortAudioDriver) Play(ctx context.Context, pcm []byte, sampleRate, deviceID int) error {
	if err := d.ensureInit(); err != nil {
		return err
	}
	if len(pcm) == 0 {
		return nil
	}
	dev, err := d.outputDevice(deviceID)
	if err != nil {
		return err
	}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = audio.Channels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = playbackFrameSamples

	buf := make([]int16, playbackFrameSamples)
	stream, err := portaudio.OpenStream(params, &buf)
	if err != nil {
		return fmt.Errorf("open portaudio output: %w", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return fmt.Errorf("start portaudio output: %w", err)
	}

	d.stopped.Store(false)
	samples := bytesToInt16(pcm)
	for offset := 0; offset < len(samples); offset += playbackFrameSamples {
		if ctx.Err() != nil {
			break
		}
		if d.stopped.Load() {
			slog.Debug("playback interrupted", "remaining_samples", len(samples)-offset)
			break
		}
		n := copy(buf, samples[offset:])
		for i := n; i < playbackFrameSamples; i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			if errors.Is(err, portaudio.OutputUnderflowed) {
				continue
			}
			return fmt.Errorf("write playback frames: %w", err)
		}
	}
	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop playback stream: %w", err)
	}
	return ctx.Err()
}

func (d *PortAudioDriver) StopPlayback() {
	d.stopped.Store(true)
}

func (d *PortAudioDriver) ListDevices() ([]audio.Device, error) {
	if err := d.ensureInit(); err != nil {
		return nil, err
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	devices := make([]audio.Device, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, audio.Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return devices, nil
}

func (d *PortAudioDriver) Terminate() error {
	if !d.initDone.Load() {
		return nil
	}
	return portaudio.Terminate()
}

func (d *PortAudioDriver) inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == audio.DefaultDeviceID {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("default input device: %w", err)
		}
		return dev, nil
	}
	dev, err := deviceByID(deviceID)
	if err != nil {
		return nil, err
	}
	if dev.MaxInputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no input channels", deviceID, dev.Name)
	}
	return dev, nil
}

func (d *PortAudioDriver) outputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == audio.DefaultDeviceID {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("default output device: %w", err)
		}
		return dev, nil
	}
	dev, err := deviceByID(deviceID)
	if err != nil {
		return nil, err
	}
	if dev.MaxOutputChannels < 1 {
		return nil, fmt.Errorf("device %d (%s) has no output channels", deviceID, dev.Name)
	}
	return dev, nil
}

func deviceByID(deviceID int) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	if deviceID < 0 || deviceID >= len(infos) {
		return nil, fmt.Errorf("audio device %d does not exist", deviceID)
	}
	return infos[deviceID], nil
}

func bytesToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples
}

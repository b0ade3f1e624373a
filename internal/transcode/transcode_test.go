package transcode

import (
	"bytes"
	"errors"
	"testing"
)

type fakeDecoder struct {
	pcm []byte
	err error
}

func (d *fakeDecoder) Decode(_ []byte, _ int) ([]byte, error) {
	return d.pcm, d.err
}

func TestRegistryDecodesWithMatchingDecoder(t *testing.T) {
	registry := NewRegistry()
	registry.Register("mp3", &fakeDecoder{pcm: []byte{1, 2, 3, 4}})

	result, err := registry.Decode("audio-24khz-48kbitrate-mono-mp3", []byte{0xff}, 24000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Degraded {
		t.Fatal("result marked degraded with a working decoder")
	}
	if !bytes.Equal(result.PCM, []byte{1, 2, 3, 4}) {
		t.Fatalf("got %v, want decoded pcm", result.PCM)
	}
}

func TestRegistryPassesThroughUnknownFormat(t *testing.T) {
	registry := NewRegistry()
	registry.Register("mp3", &fakeDecoder{pcm: []byte{1}})

	encoded := []byte{9, 8, 7}
	result, err := registry.Decode("webm-24khz-16bit-mono-vorbis", encoded, 24000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("unknown format should produce a degraded result")
	}
	if !bytes.Equal(result.PCM, encoded) {
		t.Fatalf("got %v, want original bytes", result.PCM)
	}
}

func TestRegistryPassesThroughUnavailableDecoder(t *testing.T) {
	registry := NewRegistry()
	registry.Register("opus", &fakeDecoder{err: ErrUnavailable})

	encoded := []byte{5, 5, 5}
	result, err := registry.Decode("ogg-24khz-16bit-mono-opus", encoded, 24000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("unavailable decoder should produce a degraded result")
	}
	if !bytes.Equal(result.PCM, encoded) {
		t.Fatalf("got %v, want original bytes", result.PCM)
	}
}

func TestRegistryReturnsDecodeErrors(t *testing.T) {
	registry := NewRegistry()
	wantErr := errors.New("corrupt frame")
	registry.Register("mp3", &fakeDecoder{err: wantErr})

	_, err := registry.Decode("audio-24khz-48kbitrate-mono-mp3", []byte{0xff}, 24000)
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want decode error", err)
	}
}

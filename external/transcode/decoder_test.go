package transcode

import (
	"bytes"
	"testing"
)

func TestDownmixStereo_AveragesChannels(t *testing.T) {
	// Two frames: (1000, 3000) and (-2000, -2000).
	stereo := []byte{
		0xE8, 0x03, 0xB8, 0x0B,
		0x30, 0xF8, 0x30, 0xF8,
	}
	mono := downmixStereo(stereo)
	want := []byte{
		0xD0, 0x07,
		0x30, 0xF8,
	}
	if !bytes.Equal(mono, want) {
		t.Fatalf("mono is %v, want %v", mono, want)
	}
}

func TestResamplePCM_HalvesRate(t *testing.T) {
	// 200ms of silence at 48kHz.
	in := make([]byte, 9600*2)
	out, err := resamplePCM(in, 48000, 24000)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	if len(out)%2 != 0 {
		t.Fatalf("output length %d is not sample aligned", len(out))
	}
	samples := len(out) / 2
	if samples < 3800 || samples > 5400 {
		t.Fatalf("got %d samples, want about 4800", samples)
	}
}

func TestMP3Decoder_RejectsGarbage(t *testing.T) {
	dec := NewMP3Decoder()
	if _, err := dec.Decode([]byte("definitely not an mp3 clip"), 24000); err == nil {
		t.Fatal("garbage input accepted")
	}
}

func TestPCMDecoder_PassesThrough(t *testing.T) {
	dec := NewPCMDecoder()
	in := []byte{1, 2, 3, 4}
	out, err := dec.Decode(in, 24000)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("output is %v, want %v", out, in)
	}
}

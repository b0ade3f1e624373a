package transcode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/foxseedlab/voicebridge/internal/transcode"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Decoder turns an MP3 clip into 16-bit mono PCM at the requested rate.
// The underlying decoder always yields interleaved stereo at the source
// rate, so the result is downmixed and resampled as needed.
type MP3Decoder struct{}

func NewMP3Decoder() transcode.Decoder {
	return &MP3Decoder{}
}

func (d *MP3Decoder) Decode(data []byte, sampleRate int) ([]byte, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}
	stereo, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 stream: %w", err)
	}

	mono := downmixStereo(stereo)
	if decoder.SampleRate() == sampleRate {
		return mono, nil
	}
	return resamplePCM(mono, decoder.SampleRate(), sampleRate)
}

// downmixStereo averages the two channels of interleaved 16-bit samples.
func downmixStereo(stereo []byte) []byte {
	frames := len(stereo) / 4
	mono := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		left := int16(stereo[i*4]) | int16(stereo[i*4+1])<<8
		right := int16(stereo[i*4+2]) | int16(stereo[i*4+3])<<8
		sample := int16((int32(left) + int32(right)) / 2)
		mono[i*2] = byte(sample)
		mono[i*2+1] = byte(sample >> 8)
	}
	return mono
}

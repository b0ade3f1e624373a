//go:build opus

package transcode

import (
	"fmt"

	"github.com/foxseedlab/voicebridge/internal/transcode"
	"github.com/hraban/opus"
)

// maxOpusFrameMs is the longest frame duration libopus produces.
const maxOpusFrameMs = 120

type OpusDecoder struct{}

func NewOpusDecoder() transcode.Decoder {
	return &OpusDecoder{}
}

// Decode unpacks an Ogg Opus clip into 16-bit mono PCM at the requested
// rate. Stereo packets are downmixed by the decoder itself.
func (d *OpusDecoder) Decode(data []byte, sampleRate int) ([]byte, error) {
	packets, err := oggOpusPackets(data)
	if err != nil {
		return nil, err
	}

	dec, err := opus.NewDecoder(sampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}

	frame := make([]int16, sampleRate*maxOpusFrameMs/1000)
	var pcm []byte
	for _, packet := range packets {
		n, err := dec.Decode(packet, frame)
		if err != nil {
			return nil, fmt.Errorf("decode opus packet: %w", err)
		}
		for _, sample := range frame[:n] {
			pcm = append(pcm, byte(sample), byte(sample>>8))
		}
	}
	return pcm, nil
}

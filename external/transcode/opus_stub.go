//go:build !opus

package transcode

import "github.com/foxseedlab/voicebridge/internal/transcode"

// Opus decoding needs cgo and libopus. Builds without the opus tag get a
// decoder that reports itself unavailable, which downgrades playback to the
// compressed bytes instead of failing the sentence.
func NewOpusDecoder() transcode.Decoder {
	return unavailableOpusDecoder{}
}

type unavailableOpusDecoder struct{}

func (unavailableOpusDecoder) Decode(_ []byte, _ int) ([]byte, error) {
	return nil, transcode.ErrUnavailable
}

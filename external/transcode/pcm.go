package transcode

import "github.com/foxseedlab/voicebridge/internal/transcode"

// PCMDecoder handles output formats that already carry raw PCM.
type PCMDecoder struct{}

func NewPCMDecoder() transcode.Decoder {
	return &PCMDecoder{}
}

func (d *PCMDecoder) Decode(data []byte, _ int) ([]byte, error) {
	return data, nil
}

package transcode

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// resamplePCM converts 16-bit mono PCM between sample rates.
func resamplePCM(pcm []byte, fromRate, toRate int) ([]byte, error) {
	resampler, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}

	input := make([]float64, len(pcm)/2)
	for i := range input {
		sample := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		input[i] = float64(sample) / 32768.0
	}

	output, err := resampler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample pcm: %w", err)
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		sample := int16(s * 32767.0)
		if s > 1.0 {
			sample = 32767
		} else if s < -1.0 {
			sample = -32768
		}
		out[i*2] = byte(sample)
		out[i*2+1] = byte(sample >> 8)
	}
	return out, nil
}

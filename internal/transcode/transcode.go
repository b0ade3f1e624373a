package transcode

import (
	"errors"
	"strings"
	"sync"
)

// ErrUnavailable reports that a decoder exists for the encoding but was not
// compiled into this binary.
var ErrUnavailable = errors.New("transcode: decoder unavailable in this build")

// Result is decoded playback audio. When Degraded is set, PCM holds the
// original encoded bytes because no decoder could handle them.
type Result struct {
	PCM      []byte
	Degraded bool
}

// Decoder converts one encoded audio format to s16le mono PCM at the
// requested sample rate.
type Decoder interface {
	Decode(data []byte, sampleRate int) ([]byte, error)
}

// Registry maps encoding names to decoders and resolves them from synthesis
// output format strings such as "audio-24khz-48kbitrate-mono-mp3".
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

func (r *Registry) Register(encoding string, decoder Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[encoding] = decoder
}

// Decode resolves a decoder by matching registered encoding names against the
// output format string. Unknown formats pass through as degraded results
// rather than failing the caller.
func (r *Registry) Decode(outputFormat string, data []byte, sampleRate int) (Result, error) {
	decoder := r.decoderFor(outputFormat)
	if decoder == nil {
		return Result{PCM: data, Degraded: true}, nil
	}

	pcm, err := decoder.Decode(data, sampleRate)
	if errors.Is(err, ErrUnavailable) {
		return Result{PCM: data, Degraded: true}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{PCM: pcm}, nil
}

func (r *Registry) decoderFor(outputFormat string) Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for encoding, decoder := range r.decoders {
		if strings.Contains(outputFormat, encoding) {
			return decoder
		}
	}
	return nil
}

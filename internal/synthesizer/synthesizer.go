package synthesizer

import "context"

// Synthesizer converts a sentence into encoded audio in the provider's
// configured output format. The voice selects both language and speaker.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, rate string) ([]byte, error)
}

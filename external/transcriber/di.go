package transcriber

import (
	"fmt"

	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.TranscriberProvider {
		case config.TranscriberDeepgram:
			return NewDeepgramTranscriber(DeepgramConfig{
				APIKey:         c.DeepgramAPIKey,
				Model:          c.DeepgramModel,
				UtteranceEndMS: c.UtteranceEndMS,
			}), nil
		case config.TranscriberGoogle:
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
			}), nil
		default:
			return nil, fmt.Errorf("unknown transcriber provider %q", c.TranscriberProvider)
		}
	})
}

package synthesizer

import (
	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/synthesizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (synthesizer.Synthesizer, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewEdgeSynthesizer(EdgeConfig{
			OutputFormat: c.TTSOutputFormat,
		}), nil
	})
}

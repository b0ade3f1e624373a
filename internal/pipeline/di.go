package pipeline

import (
	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/console"
	"github.com/foxseedlab/voicebridge/internal/metrics"
	"github.com/foxseedlab/voicebridge/internal/repository"
	"github.com/foxseedlab/voicebridge/internal/synthesizer"
	"github.com/foxseedlab/voicebridge/internal/transcode"
	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"github.com/foxseedlab/voicebridge/internal/translator"
	"github.com/foxseedlab/voicebridge/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*metrics.Metrics, error) {
		return metrics.NewMetrics(), nil
	})
	do.Provide(injector, func(i do.Injector) (*Controller, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		driver := do.MustInvoke[audio.Driver](i)
		stt := do.MustInvoke[transcriber.Transcriber](i)
		tr := do.MustInvoke[translator.Translator](i)
		syn := do.MustInvoke[synthesizer.Synthesizer](i)
		transcoder := do.MustInvoke[*transcode.Registry](i)
		cons := do.MustInvoke[console.Console](i)
		wh := do.MustInvoke[webhook.Sender](i)
		m := do.MustInvoke[*metrics.Metrics](i)
		return NewController(cfg, repo, driver, stt, tr, syn, transcoder, cons, wh, m)
	})
}

package audio

import (
	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (audio.Driver, error) {
		return NewPortAudioDriver(), nil
	})
}

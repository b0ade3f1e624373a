package transcode

import (
	"github.com/foxseedlab/voicebridge/internal/transcode"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*transcode.Registry, error) {
		r := transcode.NewRegistry()
		r.Register("mp3", NewMP3Decoder())
		r.Register("opus", NewOpusDecoder())
		r.Register("pcm", NewPCMDecoder())
		r.Register("raw", NewPCMDecoder())
		return r, nil
	})
}

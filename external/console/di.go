package console

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/foxseedlab/voicebridge/internal/console"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (console.Console, error) {
		return NewTerminal(os.Stdin, os.Stdout), nil
	})
}

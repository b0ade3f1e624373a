package translator

import (
	"fmt"

	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/translator"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (translator.Translator, error) {
		c := do.MustInvoke[*config.Config](i)
		switch c.TranslatorProvider {
		case config.TranslatorAnthropic:
			return NewAnthropicTranslator(AnthropicConfig{
				APIKey: c.AnthropicAPIKey,
				Model:  c.AnthropicModel,
			}), nil
		case config.TranslatorOpenAI:
			return NewOpenAITranslator(OpenAIConfig{
				APIKey: c.OpenAIAPIKey,
				Model:  c.OpenAIModel,
			}), nil
		default:
			return nil, fmt.Errorf("unknown translator provider %q", c.TranslatorProvider)
		}
	})
}

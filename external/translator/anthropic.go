package translator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/foxseedlab/voicebridge/internal/translator"
)

const anthropicMaxTokens = 1024

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type AnthropicTranslator struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicTranslator(cfg AnthropicConfig) translator.Translator {
	return &AnthropicTranslator{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  anthropic.Model(cfg.Model),
	}
}

func (t *AnthropicTranslator) Translate(ctx context.Context, instruction, sentence string) (string, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return "", nil
	}

	message, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     t.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: instruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(sentence)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	for _, block := range message.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	slog.Warn("anthropic returned no text content", "model", t.model)
	return "", nil
}

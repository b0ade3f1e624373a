package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/foxseedlab/voicebridge/internal/translator"
	openai "github.com/sashabaranov/go-openai"
)

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type OpenAITranslator struct {
	client *openai.Client
	model  string
}

func NewOpenAITranslator(cfg OpenAIConfig) translator.Translator {
	return &OpenAITranslator{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

func (t *OpenAITranslator) Translate(ctx context.Context, instruction, sentence string) (string, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return "", nil
	}

	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: sentence},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

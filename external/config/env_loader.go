package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/voicebridge/internal/config"
	"github.com/joho/godotenv"
)

type envConfig struct {
	Env                 string `env:"ENV" envDefault:"production"`
	SourceLanguage      string `env:"SOURCE_LANGUAGE" envDefault:"ko"`
	TargetLanguage      string `env:"TARGET_LANGUAGE" envDefault:"en"`
	TranscriberProvider string `env:"TRANSCRIBER_PROVIDER" envDefault:"deepgram"`

	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	DeepgramModel  string `env:"DEEPGRAM_MODEL" envDefault:"nova-2"`
	UtteranceEndMS int    `env:"UTTERANCE_END_MS" envDefault:"1000"`

	GoogleCloudProjectID       string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation  string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel     string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"latest_long"`

	TranslatorProvider string `env:"TRANSLATOR_PROVIDER" envDefault:"anthropic"`
	AnthropicAPIKey    string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel     string `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIModel        string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	TTSOutputFormat string `env:"TTS_OUTPUT_FORMAT" envDefault:"audio-24khz-48kbitrate-mono-mp3"`
	TTSRate         string `env:"TTS_RATE" envDefault:"+15%"`

	InputDeviceID  int `env:"INPUT_DEVICE_ID" envDefault:"-1"`
	OutputDeviceID int `env:"OUTPUT_DEVICE_ID" envDefault:"-1"`

	DatabaseURL          string `env:"DATABASE_URL"`
	TranscriptWebhookURL string `env:"TRANSCRIPT_WEBHOOK_URL"`
	MetricsAddr          string `env:"METRICS_ADDR"`
}

func Load() (*internalconfig.Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                        raw.Env,
		SourceLanguage:             raw.SourceLanguage,
		TargetLanguage:             raw.TargetLanguage,
		TranscriberProvider:        raw.TranscriberProvider,
		DeepgramAPIKey:             raw.DeepgramAPIKey,
		DeepgramModel:              raw.DeepgramModel,
		UtteranceEndMS:             raw.UtteranceEndMS,
		GoogleCloudProjectID:       raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON: raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:  raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:     raw.GoogleCloudSpeechModel,
		TranslatorProvider:         raw.TranslatorProvider,
		AnthropicAPIKey:            raw.AnthropicAPIKey,
		AnthropicModel:             raw.AnthropicModel,
		OpenAIAPIKey:               raw.OpenAIAPIKey,
		OpenAIModel:                raw.OpenAIModel,
		TTSOutputFormat:            raw.TTSOutputFormat,
		TTSRate:                    raw.TTSRate,
		InputDeviceID:              raw.InputDeviceID,
		OutputDeviceID:             raw.OutputDeviceID,
		DatabaseURL:                raw.DatabaseURL,
		TranscriptWebhookURL:       raw.TranscriptWebhookURL,
		MetricsAddr:                raw.MetricsAddr,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

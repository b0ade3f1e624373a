package config

import "fmt"

const (
	TranscriberDeepgram = "deepgram"
	TranscriberGoogle   = "google"

	TranslatorAnthropic = "anthropic"
	TranslatorOpenAI    = "openai"
)

type Config struct {
	Env                 string
	SourceLanguage      string
	TargetLanguage      string
	TranscriberProvider string

	DeepgramAPIKey string
	DeepgramModel  string
	UtteranceEndMS int

	GoogleCloudProjectID       string
	GoogleCloudCredentialsJSON string
	GoogleCloudSpeechLocation  string
	GoogleCloudSpeechModel     string

	TranslatorProvider string
	AnthropicAPIKey    string
	AnthropicModel     string
	OpenAIAPIKey       string
	OpenAIModel        string

	TTSOutputFormat string
	TTSRate         string

	InputDeviceID  int
	OutputDeviceID int

	DatabaseURL          string
	TranscriptWebhookURL string
	MetricsAddr          string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	switch c.TranscriberProvider {
	case TranscriberDeepgram:
		if c.DeepgramAPIKey == "" {
			return fmt.Errorf("DEEPGRAM_API_KEY is required when TRANSCRIBER_PROVIDER=%s", TranscriberDeepgram)
		}
	case TranscriberGoogle:
		if c.GoogleCloudProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID is required when TRANSCRIBER_PROVIDER=%s", TranscriberGoogle)
		}
		if c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_CREDENTIALS_JSON is required when TRANSCRIBER_PROVIDER=%s", TranscriberGoogle)
		}
	default:
		return fmt.Errorf("TRANSCRIBER_PROVIDER must be %q or %q, got %q", TranscriberDeepgram, TranscriberGoogle, c.TranscriberProvider)
	}
	switch c.TranslatorProvider {
	case TranslatorAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when TRANSLATOR_PROVIDER=%s", TranslatorAnthropic)
		}
	case TranslatorOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when TRANSLATOR_PROVIDER=%s", TranslatorOpenAI)
		}
	default:
		return fmt.Errorf("TRANSLATOR_PROVIDER must be %q or %q, got %q", TranslatorAnthropic, TranslatorOpenAI, c.TranslatorProvider)
	}
	if !isSupportedTargetLanguage(c.TargetLanguage) {
		return fmt.Errorf("TARGET_LANGUAGE must be one of en, de, got %q", c.TargetLanguage)
	}
	if c.UtteranceEndMS <= 0 {
		return fmt.Errorf("UTTERANCE_END_MS must be positive, got %d", c.UtteranceEndMS)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "SOURCE_LANGUAGE", value: c.SourceLanguage},
		{name: "TARGET_LANGUAGE", value: c.TargetLanguage},
		{name: "TRANSCRIBER_PROVIDER", value: c.TranscriberProvider},
		{name: "TRANSLATOR_PROVIDER", value: c.TranslatorProvider},
		{name: "TTS_OUTPUT_FORMAT", value: c.TTSOutputFormat},
		{name: "TTS_RATE", value: c.TTSRate},
	}
}

func isSupportedTargetLanguage(code string) bool {
	switch code {
	case "en", "de":
		return true
	default:
		return false
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

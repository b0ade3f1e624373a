package translator

import (
	"context"
	"fmt"
)

type Translator interface {
	Translate(ctx context.Context, instruction, sentence string) (string, error)
}

var languageNames = map[string]string{
	"ko": "Korean",
	"en": "English",
	"de": "German",
}

func languageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// Instruction builds the translation system prompt for one language pair.
func Instruction(sourceLanguage, targetLanguage string) string {
	return fmt.Sprintf(
		"You are a real-time voice translator. Translate the following %s text into natural, conversational %s. Rules: "+
			"1) Produce ONLY the translation, no explanations or meta-commentary. "+
			"2) Keep it concise - match the brevity of spoken language, not written prose. "+
			"3) Preserve the speaker's tone and meaning. "+
			"4) If the input is a greeting or filler, translate it naturally.",
		languageName(sourceLanguage), languageName(targetLanguage))
}

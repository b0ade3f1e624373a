package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/voicebridge/internal/repository"
	"github.com/foxseedlab/voicebridge/internal/webhook"
)

const transcriptTimeLayout = "2006-01-02 15:04:05"

func buildTranscriptText(sess *repository.Session, endedAt time.Time, utterances []repository.Utterance) []byte {
	startText := sess.StartedAt.UTC().Format(transcriptTimeLayout)
	endText := endedAt.UTC().Format(transcriptTimeLayout)

	lines := []string{
		fmt.Sprintf("Session: %s", sess.ID),
		fmt.Sprintf("Source language: %s", sess.SourceLanguage),
		fmt.Sprintf("Period: %s ~ %s (UTC)", startText, endText),
		fmt.Sprintf("Utterances: %d", len(utterances)),
		"",
	}
	lines = append(lines, utteranceLines(sess, utterances)...)
	return []byte(strings.Join(lines, "\n"))
}

// utteranceLines renders each utterance as an offset-stamped source line
// followed by an aligned translation line.
func utteranceLines(sess *repository.Session, utterances []repository.Utterance) []string {
	lines := make([]string, 0, 2*len(utterances))
	for _, u := range utterances {
		offset := formatElapsedHMS(utteranceOffset(sess.StartedAt, u.SpokenAt))
		lines = append(lines, fmt.Sprintf("%s [%s] %s", offset, sess.SourceLanguage, u.SourceText))
		lines = append(lines, fmt.Sprintf("%s [%s] %s", strings.Repeat(" ", len(offset)), u.TargetLanguage, u.TranslatedText))
	}
	return lines
}

func buildTranscriptPayload(sess *repository.Session, endedAt time.Time, stopReason string, utterances []repository.Utterance) webhook.TranscriptPayload {
	items := make([]webhook.TranscriptUtterance, 0, len(utterances))
	for _, u := range utterances {
		items = append(items, webhook.TranscriptUtterance{
			Index:          u.UtteranceIndex,
			Offset:         formatElapsedHMS(utteranceOffset(sess.StartedAt, u.SpokenAt)),
			SourceText:     u.SourceText,
			TargetLanguage: u.TargetLanguage,
			TranslatedText: u.TranslatedText,
		})
	}

	durationSeconds := int64(endedAt.Sub(sess.StartedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	return webhook.TranscriptPayload{
		SchemaVersion:   webhook.TranscriptPayloadSchemaVersion,
		SessionID:       sess.ID,
		SourceLanguage:  sess.SourceLanguage,
		StartedAt:       sess.StartedAt.UTC(),
		EndedAt:         endedAt.UTC(),
		DurationSeconds: durationSeconds,
		UtteranceCount:  len(utterances),
		StopReason:      stopReason,
		Utterances:      items,
		Transcript:      strings.Join(utteranceLines(sess, utterances), "\n"),
	}
}

func utteranceOffset(startedAt, spokenAt time.Time) time.Duration {
	elapsed := spokenAt.Sub(startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

func formatElapsedHMS(d time.Duration) string {
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

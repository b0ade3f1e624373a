package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/console"
	"github.com/foxseedlab/voicebridge/internal/metrics"
	"github.com/foxseedlab/voicebridge/internal/repository"
	"github.com/foxseedlab/voicebridge/internal/synthesizer"
	"github.com/foxseedlab/voicebridge/internal/transcode"
	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"github.com/foxseedlab/voicebridge/internal/translator"
	"github.com/foxseedlab/voicebridge/internal/webhook"
)

const (
	sentencePollInterval = 100 * time.Millisecond
	statsInterval        = 5 * time.Second

	// sentenceTimeout bounds one sentence end to end so a hung provider
	// cannot stall the loop or block shutdown.
	sentenceTimeout = 30 * time.Second
	persistTimeout  = 5 * time.Second
	finalizeTimeout = 15 * time.Second
)

const (
	stopReasonOperatorQuit   = "operator quit command"
	stopReasonInputClosed    = "console input closed"
	stopReasonShutdownSignal = "shutdown signal"
)

// Controller runs one interpreting session: microphone chunks feed the
// recognition stream, completed sentences run through translate, synthesize
// and playback one at a time, and the session record is finalized on stop.
type Controller struct {
	cfg         *config.Config
	repo        repository.Repository
	source      *audio.Source
	sink        *audio.Sink
	stream      *transcriber.Supervisor
	translator  translator.Translator
	synthesizer synthesizer.Synthesizer
	transcoder  *transcode.Registry
	console     console.Console
	webhook     webhook.Sender
	metrics     *metrics.Metrics

	assembler *Assembler
	state     *State

	mu        sync.Mutex
	sess      *repository.Session
	nextIndex int
}

func NewController(
	cfg *config.Config,
	repo repository.Repository,
	driver audio.Driver,
	stt transcriber.Transcriber,
	tr translator.Translator,
	syn synthesizer.Synthesizer,
	transcoder *transcode.Registry,
	cons console.Console,
	wh webhook.Sender,
	m *metrics.Metrics,
) (*Controller, error) {
	state, err := NewState(cfg)
	if err != nil {
		return nil, err
	}
	return &Controller{
		cfg:         cfg,
		repo:        repo,
		source:      audio.NewSource(driver, cfg.InputDeviceID),
		sink:        audio.NewSink(driver, cfg.OutputDeviceID),
		stream: transcriber.NewSupervisor(stt, transcriber.SupervisorConfig{
			Language:    cfg.SourceLanguage,
			OnReconnect: func(int) { m.RecordStreamReconnect() },
		}),
		translator:  tr,
		synthesizer: syn,
		transcoder:  transcoder,
		console:     cons,
		webhook:     wh,
		metrics:     m,
		assembler:   NewAssembler(),
		state:       state,
	}, nil
}

// Run blocks until the operator quits, console input ends, or ctx is
// canceled. The sentence being processed at that moment still finishes.
func (c *Controller) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess, err := c.repo.CreateSession(runCtx, repository.CreateSessionInput{
		SourceLanguage: c.cfg.SourceLanguage,
		StartedAt:      time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()
	slog.Info("session created", "session_id", sess.ID, "source_language", sess.SourceLanguage)

	snap := c.state.Snapshot()
	c.console.ShowBanner(snap.SourceLanguage, snap.TargetLanguage)

	if err := c.stream.Connect(runCtx); err != nil {
		return fmt.Errorf("connect transcript stream: %w", err)
	}

	c.source.OnChunk(func(_ []byte, status audio.CaptureStatus) {
		c.metrics.RecordChunkCaptured()
		if status.Dropped {
			c.metrics.RecordChunkDropped()
		}
		if status.InputOverflow {
			c.metrics.RecordInputOverflow()
		}
	})
	if err := c.source.Start(runCtx); err != nil {
		_ = c.stream.Close()
		return fmt.Errorf("start audio capture: %w", err)
	}

	var workers sync.WaitGroup
	workers.Add(4)
	go func() { defer workers.Done(); c.forwardAudio(runCtx) }()
	go func() { defer workers.Done(); c.consumeEvents() }()
	go func() { defer workers.Done(); c.processSentences(runCtx) }()
	go func() { defer workers.Done(); c.statsLoop(runCtx) }()

	reason := c.waitForStop(runCtx)
	slog.Info("stopping session", "session_id", sess.ID, "reason", reason)

	cancel()
	if err := c.source.Stop(); err != nil && !errors.Is(err, audio.ErrSourceNotStarted) {
		slog.Warn("audio capture stop failed", "error", err)
	}
	if err := c.stream.Close(); err != nil {
		slog.Warn("transcript stream close failed", "error", err)
	}
	workers.Wait()

	c.finalizeSession(sess, reason)
	return nil
}

func (c *Controller) waitForStop(ctx context.Context) string {
	for {
		select {
		case <-ctx.Done():
			return stopReasonShutdownSignal
		case cmd, ok := <-c.console.Commands():
			if !ok {
				return stopReasonInputClosed
			}
			switch cmd {
			case console.CommandQuit:
				return stopReasonOperatorQuit
			case console.CommandToggleLanguage:
				next := c.state.ToggleTarget()
				c.console.ShowTargetLanguage(next.TargetLanguage)
				slog.Info("target language toggled", "target_language", next.TargetLanguage, "voice", next.Voice, "version", next.Version)
			case console.CommandClearPending:
				dropped := c.assembler.Clear()
				c.metrics.SetPendingSentences(0)
				c.console.ShowNotice(fmt.Sprintf("Cleared %d pending sentence(s).", dropped))
				slog.Info("pending sentences cleared", "dropped", dropped)
			}
		}
	}
}

// forwardAudio pushes captured chunks into the recognition stream. Chunks
// arriving while the stream is down are discarded so capture never stalls.
func (c *Controller) forwardAudio(ctx context.Context) {
	var sent, unsent int64
	for {
		chunk, err := c.source.NextChunk(ctx)
		if err != nil {
			slog.Info("audio forwarding stopped", "sent_chunks", sent, "unsent_chunks", unsent)
			return
		}
		if err := c.stream.Send(chunk); err != nil {
			unsent++
			if unsent == 1 || unsent%100 == 0 {
				slog.Warn("recognition stream not accepting audio", "error", err, "unsent_chunks", unsent)
			}
			continue
		}
		sent++
	}
}

func (c *Controller) consumeEvents() {
	for ev := range c.stream.Events() {
		c.metrics.RecordRecognitionEvent(ev.Type.String())
		switch ev.Type {
		case transcriber.EventPartial:
			c.console.ShowPartial(ev.Text)
		case transcriber.EventFinalFragment:
			c.assembler.AddFragment(ev.Text)
		case transcriber.EventUtteranceEnd:
			sentence, ok := c.assembler.FinishSentence()
			if !ok {
				continue
			}
			c.console.ShowRecognized(sentence)
			pending := c.assembler.PendingCount()
			c.metrics.SetPendingSentences(pending)
			slog.Debug("sentence completed", "pending_sentences", pending)
		case transcriber.EventConnectionClosed:
			slog.Info("recognition connection closed by remote")
		case transcriber.EventError:
			if errors.Is(ev.Err, transcriber.ErrReconnectsExhausted) {
				c.metrics.RecordStreamFailure()
				c.console.ShowNotice("Speech recognition lost and could not be restored. Press q to quit.")
				slog.Error("recognition stream abandoned", "error", ev.Err)
				continue
			}
			slog.Error("recognition stream error", "error", ev.Err)
		}
	}
}

// processSentences runs completed sentences through the back half of the
// pipeline one at a time, in completion order.
func (c *Controller) processSentences(ctx context.Context) {
	ticker := time.NewTicker(sentencePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				sentence, ok := c.assembler.NextSentence()
				if !ok {
					break
				}
				c.metrics.SetPendingSentences(c.assembler.PendingCount())
				c.processSentence(sentence)
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// processSentence carries its own deadline rather than the run context so a
// sentence in flight at shutdown still completes.
func (c *Controller) processSentence(sentence string) {
	snap := c.state.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), sentenceTimeout)
	defer cancel()

	start := time.Now()
	translated, err := c.translator.Translate(ctx, snap.Instruction, sentence)
	translateElapsed := time.Since(start)
	if err != nil {
		slog.Error("translation failed; skipping sentence", "error", err, "target_language", snap.TargetLanguage)
		c.metrics.RecordUtteranceSkipped("translate")
		return
	}
	translated = strings.TrimSpace(translated)
	if translated == "" {
		slog.Warn("translation empty; skipping sentence", "target_language", snap.TargetLanguage)
		c.metrics.RecordUtteranceSkipped("translate")
		return
	}
	c.console.ShowTranslated(snap.TargetLanguage, translated)

	synthStart := time.Now()
	encoded, err := c.synthesizer.Synthesize(ctx, translated, snap.Voice, snap.Rate)
	if err != nil {
		slog.Error("synthesis failed; skipping sentence", "error", err, "voice", snap.Voice)
		c.metrics.RecordUtteranceSkipped("synthesize")
		return
	}
	if len(encoded) == 0 {
		slog.Warn("synthesis produced no audio; skipping sentence", "voice", snap.Voice)
		c.metrics.RecordUtteranceSkipped("synthesize")
		return
	}
	result, err := c.transcoder.Decode(c.cfg.TTSOutputFormat, encoded, audio.PlaybackSampleRate)
	if err != nil {
		slog.Error("transcode failed; skipping sentence", "error", err, "output_format", c.cfg.TTSOutputFormat)
		c.metrics.RecordUtteranceSkipped("transcode")
		return
	}
	synthesizeElapsed := time.Since(synthStart)
	if result.Degraded {
		c.metrics.RecordDegradedPlayback()
		slog.Warn("no decoder for synthesis output; playing raw bytes", "output_format", c.cfg.TTSOutputFormat, "bytes", len(result.PCM))
	}

	playStart := time.Now()
	if err := c.sink.Play(ctx, result.PCM); err != nil {
		slog.Error("playback failed; skipping sentence", "error", err)
		c.metrics.RecordUtteranceSkipped("playback")
		return
	}
	playbackElapsed := time.Since(playStart)
	total := time.Since(start)

	c.console.ShowLatency(total, translateElapsed, synthesizeElapsed, playbackElapsed)
	c.metrics.RecordUtteranceProcessed(translateElapsed.Seconds(), synthesizeElapsed.Seconds(), playbackElapsed.Seconds())
	slog.Info("sentence spoken",
		"target_language", snap.TargetLanguage,
		"total_ms", total.Milliseconds(),
		"translate_ms", translateElapsed.Milliseconds(),
		"synthesize_ms", synthesizeElapsed.Milliseconds(),
		"playback_ms", playbackElapsed.Milliseconds(),
		"degraded", result.Degraded)

	c.recordUtterance(sentence, translated, snap, start, translateElapsed, synthesizeElapsed, playbackElapsed, result.Degraded)
}

func (c *Controller) recordUtterance(source, translated string, snap Snapshot, spokenAt time.Time, translateElapsed, synthesizeElapsed, playbackElapsed time.Duration, degraded bool) {
	c.mu.Lock()
	sess := c.sess
	index := c.nextIndex
	c.nextIndex++
	c.mu.Unlock()
	if sess == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := c.repo.InsertUtterance(ctx, repository.InsertUtteranceInput{
		SessionID:      sess.ID,
		UtteranceIndex: index,
		SourceText:     source,
		TargetLanguage: snap.TargetLanguage,
		TranslatedText: translated,
		Degraded:       degraded,
		TranslateMS:    translateElapsed.Milliseconds(),
		SynthesizeMS:   synthesizeElapsed.Milliseconds(),
		PlaybackMS:     playbackElapsed.Milliseconds(),
		SpokenAt:       spokenAt,
	}); err != nil {
		slog.Error("failed to insert utterance", "error", err, "session_id", sess.ID, "utterance_index", index)
	}
}

func (c *Controller) statsLoop(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending := c.assembler.PendingCount()
			c.metrics.SetPendingSentences(pending)
			slog.Info("pipeline stats",
				"captured_chunks", c.source.CapturedChunks(),
				"dropped_chunks", c.source.DroppedChunks(),
				"pending_sentences", pending,
				"stream_state", c.stream.State().String())
		}
	}
}

func (c *Controller) finalizeSession(sess *repository.Session, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()
	endedAt := time.Now()

	utterances, err := c.repo.ListUtterancesBySessionID(ctx, sess.ID)
	if err != nil {
		slog.Error("failed to list utterances; finalizing with empty transcript", "error", err, "session_id", sess.ID)
		utterances = nil
	}

	transcriptText := buildTranscriptText(sess, endedAt, utterances)
	payload := buildTranscriptPayload(sess, endedAt, reason, utterances)
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal transcript payload", "error", err, "session_id", sess.ID)
	}

	if err := c.repo.UpdateSessionCompleted(ctx, repository.CompleteSessionInput{
		SessionID: sess.ID,
		EndedAt:   endedAt,
	}); err != nil {
		slog.Error("failed to complete session", "error", err, "session_id", sess.ID)
	}
	if err := c.repo.SaveSessionOutput(ctx, repository.SaveSessionOutputInput{
		SessionID:          sess.ID,
		StopReason:         reason,
		DurationSeconds:    payload.DurationSeconds,
		UtteranceCount:     len(utterances),
		TranscriptText:     string(transcriptText),
		WebhookPayloadJSON: payloadJSON,
	}); err != nil {
		slog.Error("failed to save session output", "error", err, "session_id", sess.ID)
	}
	if err := c.webhook.SendTranscript(ctx, payload); err != nil {
		slog.Error("failed to send webhook transcript", "error", err, "session_id", sess.ID)
	}
	slog.Info("session finalized", "session_id", sess.ID, "utterances", len(utterances), "duration_seconds", payload.DurationSeconds, "reason", reason)
}

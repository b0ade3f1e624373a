package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the interpreting pipeline.
type Metrics struct {
	// Capture metrics
	ChunksCaptured prometheus.Counter
	ChunksDropped  prometheus.Counter
	InputOverflows prometheus.Counter

	// Recognition stream metrics
	StreamReconnects  prometheus.Counter
	StreamFailures    prometheus.Counter
	RecognitionEvents *prometheus.CounterVec

	// Sentence pipeline metrics
	PendingSentences    prometheus.Gauge
	UtterancesProcessed prometheus.Counter
	UtterancesSkipped   *prometheus.CounterVec
	DegradedPlaybacks   prometheus.Counter
	StageDuration       *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics on a caller-supplied registerer.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Capture metrics
		ChunksCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_chunks_captured_total",
			Help: "Total number of microphone chunks captured",
		}),
		ChunksDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_chunks_dropped_total",
			Help: "Total number of microphone chunks dropped because the recognizer fell behind",
		}),
		InputOverflows: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_input_overflows_total",
			Help: "Total number of input device buffer overflows reported by the audio driver",
		}),

		// Recognition stream metrics
		StreamReconnects: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_stream_reconnects_total",
			Help: "Total number of recognition stream reconnect attempts",
		}),
		StreamFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_stream_failures_total",
			Help: "Total number of recognition streams abandoned after exhausting reconnects",
		}),
		RecognitionEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_recognition_events_total",
			Help: "Total number of recognition events received",
		}, []string{"type"}),

		// Sentence pipeline metrics
		PendingSentences: factory.NewGauge(prometheus.GaugeOpts{
			Name: "voicebridge_pending_sentences",
			Help: "Current number of completed sentences waiting for translation",
		}),
		UtterancesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_utterances_processed_total",
			Help: "Total number of sentences translated and spoken",
		}),
		UtterancesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebridge_utterances_skipped_total",
			Help: "Total number of sentences skipped because a stage produced no output",
		}, []string{"stage"}),
		DegradedPlaybacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "voicebridge_degraded_playbacks_total",
			Help: "Total number of playbacks that used undecoded synthesis output",
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicebridge_stage_duration_seconds",
			Help:    "Duration of pipeline stages per sentence",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}, []string{"stage"}),
	}
}

// RecordChunkCaptured increments the captured chunk counter.
func (m *Metrics) RecordChunkCaptured() {
	m.ChunksCaptured.Inc()
}

// RecordChunkDropped increments the dropped chunk counter.
func (m *Metrics) RecordChunkDropped() {
	m.ChunksDropped.Inc()
}

// RecordInputOverflow increments the input overflow counter.
func (m *Metrics) RecordInputOverflow() {
	m.InputOverflows.Inc()
}

// RecordStreamReconnect increments the reconnect attempt counter.
func (m *Metrics) RecordStreamReconnect() {
	m.StreamReconnects.Inc()
}

// RecordStreamFailure increments the abandoned stream counter.
func (m *Metrics) RecordStreamFailure() {
	m.StreamFailures.Inc()
}

// RecordRecognitionEvent counts one recognition event by type.
func (m *Metrics) RecordRecognitionEvent(eventType string) {
	m.RecognitionEvents.WithLabelValues(eventType).Inc()
}

// SetPendingSentences sets the current sentence backlog size.
func (m *Metrics) SetPendingSentences(count int) {
	m.PendingSentences.Set(float64(count))
}

// RecordUtteranceProcessed records a fully spoken sentence and its stage timings.
func (m *Metrics) RecordUtteranceProcessed(translateSeconds, synthesizeSeconds, playbackSeconds float64) {
	m.UtterancesProcessed.Inc()
	m.StageDuration.WithLabelValues("translate").Observe(translateSeconds)
	m.StageDuration.WithLabelValues("synthesize").Observe(synthesizeSeconds)
	m.StageDuration.WithLabelValues("playback").Observe(playbackSeconds)
}

// RecordUtteranceSkipped records a sentence dropped at the named stage.
func (m *Metrics) RecordUtteranceSkipped(stage string) {
	m.UtterancesSkipped.WithLabelValues(stage).Inc()
}

// RecordDegradedPlayback increments the degraded playback counter.
func (m *Metrics) RecordDegradedPlayback() {
	m.DegradedPlaybacks.Inc()
}

package transcriber

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/transcriber"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const speechAPIEndpointPort = 443

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	location        string
	model           string
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	return &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		location:        strings.TrimSpace(cfg.Location),
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (t *CloudSpeechTranscriber) Open(ctx context.Context, language string) (transcriber.Stream, error) {
	slog.Info("opening cloud speech stream", "location", t.location, "language", language, "model", t.model)

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	grpcStream, err := client.StreamingRecognize(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	recognizer := fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location)
	configReq := &speechpb.StreamingRecognizeRequest{
		Recognizer: recognizer,
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Model:         t.model,
					LanguageCodes: []string{language},
					DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
						ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
							Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
							SampleRateHertz:   audio.CaptureSampleRate,
							AudioChannelCount: audio.Channels,
						},
					},
					Features: &speechpb.RecognitionFeatures{},
				},
				StreamingFeatures: &speechpb.StreamingRecognitionFeatures{InterimResults: true},
			},
		},
	}
	if err := grpcStream.Send(configReq); err != nil {
		_ = grpcStream.CloseSend()
		_ = client.Close()
		return nil, fmt.Errorf("send stream config: %w", err)
	}
	slog.Info("cloud speech stream initialized", "recognizer", recognizer)

	s := &cloudSpeechStream{
		stream: grpcStream,
		client: client,
		events: make(chan transcriber.Event, eventQueueSize),
		done:   make(chan struct{}),
	}
	go s.receiveLoop()
	return s, nil
}

// cloudSpeechStream is one gRPC recognize stream. Google segments speech on
// pauses and marks each segment final, so every final result also ends an
// utterance. The service aborts streams at its five-minute limit; that
// surfaces as a connection-closed event and the caller redials.
type cloudSpeechStream struct {
	stream speechpb.Speech_StreamingRecognizeClient
	client *speech.Client
	events chan transcriber.Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (s *cloudSpeechStream) Send(pcm []byte) error {
	if s.isDone() {
		return io.ErrClosedPipe
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_Audio{
			Audio: pcm,
		},
	})
}

func (s *cloudSpeechStream) Events() <-chan transcriber.Event {
	return s.events
}

func (s *cloudSpeechStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		err = s.stream.CloseSend()
		s.writeMu.Unlock()
		if cerr := s.client.Close(); err == nil {
			err = cerr
		}
	})
	return err
}

func (s *cloudSpeechStream) receiveLoop() {
	defer close(s.events)
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			if s.isDone() || err == io.EOF || strings.Contains(err.Error(), "context canceled") {
				slog.Info("cloud speech receive loop stopped", "reason", err.Error())
				return
			}
			if isReconnectableStreamError(err) {
				slog.Warn("cloud speech stream hit a service limit", "error", err)
				s.emit(transcriber.Event{Type: transcriber.EventConnectionClosed})
				return
			}
			s.emit(transcriber.Event{Type: transcriber.EventError, Err: err})
			return
		}
		for _, result := range resp.GetResults() {
			if len(result.GetAlternatives()) == 0 {
				continue
			}
			text := strings.TrimSpace(result.GetAlternatives()[0].GetTranscript())
			if text == "" {
				continue
			}
			if result.GetIsFinal() {
				s.emit(transcriber.Event{Type: transcriber.EventFinalFragment, Text: text})
				s.emit(transcriber.Event{Type: transcriber.EventUtteranceEnd})
				continue
			}
			s.emit(transcriber.Event{Type: transcriber.EventPartial, Text: text})
		}
	}
}

func (s *cloudSpeechStream) emit(ev transcriber.Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *cloudSpeechStream) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func isReconnectableStreamError(err error) bool {
	if err == io.EOF || strings.Contains(strings.ToLower(err.Error()), "eof") {
		return true
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Aborted {
		return false
	}
	msg := strings.ToLower(st.Message())
	return strings.Contains(msg, "max duration of 5 minutes") ||
		strings.Contains(msg, "stream timed out after receiving no more client requests")
}

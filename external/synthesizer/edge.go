package synthesizer

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/voicebridge/internal/synthesizer"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	edgeDefaultBaseURL = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	edgeTrustedToken   = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	edgeOrigin         = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	edgeUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0"
	edgeDialTimeout    = 10 * time.Second
)

type EdgeConfig struct {
	OutputFormat string

	// BaseURL overrides the service endpoint. Leave empty for production.
	BaseURL string
}

type EdgeSynthesizer struct {
	outputFormat string
	baseURL      string
}

func NewEdgeSynthesizer(cfg EdgeConfig) synthesizer.Synthesizer {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = edgeDefaultBaseURL
	}
	return &EdgeSynthesizer{
		outputFormat: cfg.OutputFormat,
		baseURL:      baseURL,
	}
}

// Synthesize runs one request/response turn against the service: send the
// synthesis config and the SSML, then collect binary audio frames until the
// turn.end marker. The returned bytes are in the configured output format.
func (s *EdgeSynthesizer) Synthesize(ctx context.Context, text, voice, rate string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", s.baseURL, edgeTrustedToken, requestID())
	header := http.Header{}
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("Origin", edgeOrigin)
	header.Set("User-Agent", edgeUserAgent)

	dialer := websocket.Dialer{HandshakeTimeout: edgeDialTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial edge tts: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("dial edge tts: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(speechConfigMessage(s.outputFormat))); err != nil {
		return nil, fmt.Errorf("send speech config: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMessage(requestID(), text, voice, rate))); err != nil {
		return nil, fmt.Errorf("send ssml request: %w", err)
	}

	var audio []byte
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read edge tts message: %w", err)
		}
		switch kind {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				if len(audio) == 0 {
					slog.Warn("edge tts produced no audio", "voice", voice, "text_length", len(text))
				}
				return audio, nil
			}
		case websocket.BinaryMessage:
			if chunk, ok := audioPayload(data); ok {
				audio = append(audio, chunk...)
			}
		}
	}
}

func speechConfigMessage(outputFormat string) string {
	return "X-Timestamp:" + edgeTimestamp() + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"` + outputFormat + `"}}}}`
}

func ssmlMessage(id, text, voice, rate string) string {
	ssml := fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
			"<voice name='%s'><prosody pitch='+0Hz' rate='%s' volume='+0%%'>%s</prosody></voice></speak>",
		voice, rate, escapeText(text))
	return "X-RequestId:" + id + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + edgeTimestamp() + "\r\n" +
		"Path:ssml\r\n\r\n" +
		ssml
}

// audioPayload strips the textual header from a binary frame. The first two
// bytes carry the header length big-endian; only frames with a Path:audio
// header line carry playable audio, audio.metadata and the rest are dropped.
func audioPayload(data []byte) ([]byte, bool) {
	if len(data) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if len(data) < 2+headerLen {
		return nil, false
	}
	header := string(data[2 : 2+headerLen])
	if !strings.Contains(header, "Path:audio\r\n") {
		return nil, false
	}
	return data[2+headerLen:], true
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(text string) string {
	return xmlEscaper.Replace(text)
}

func edgeTimestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}

func requestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

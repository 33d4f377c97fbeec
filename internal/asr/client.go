// Package asr converts canonical PCM audio into raw transcript text via a
// vosk-server WebSocket endpoint.
package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// chunkBytes is the binary frame size streamed to the recognizer.
// 8000 bytes is 250 ms of canonical audio.
const chunkBytes = 8000

// Client performs single-shot full-buffer recognition against one
// vosk-server endpoint. A Client is constructed once per process and is
// safe for concurrent use; every Recognize call opens its own connection,
// so no recognizer state is shared between requests.
type Client struct {
	endpoint   string
	sampleRate int
	dialer     *websocket.Dialer
	logger     *slog.Logger
}

// NewClient constructs a recognizer client for a ws:// or wss:// endpoint.
func NewClient(endpoint string, sampleRate int, logger *slog.Logger) *Client {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		sampleRate: sampleRate,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// serverConfig is the recognition session preamble.
type serverConfig struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

// serverResult is one vosk-server reply. Interim replies carry Partial;
// committed segments carry Text.
type serverResult struct {
	Text    *string `json:"text"`
	Partial *string `json:"partial"`
}

// Recognize streams pcm to the server and returns the recognized text.
// An empty transcript is a successful outcome: the engine reports no
// speech as an empty final result, never as an error.
func (c *Client) Recognize(ctx context.Context, pcm []byte) (string, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("dial recognizer %q: %w", c.endpoint, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	var preamble serverConfig
	preamble.Config.SampleRate = c.sampleRate
	if err := conn.WriteJSON(preamble); err != nil {
		return "", fmt.Errorf("send recognizer config: %w", err)
	}

	segments := make([]string, 0, 4)
	started := time.Now()

	for offset := 0; offset < len(pcm); offset += chunkBytes {
		end := offset + chunkBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[offset:end]); err != nil {
			return "", fmt.Errorf("send audio chunk at %d: %w", offset, err)
		}

		result, err := readResult(conn)
		if err != nil {
			return "", fmt.Errorf("read recognizer reply: %w", err)
		}
		if result.Text != nil && strings.TrimSpace(*result.Text) != "" {
			segments = append(segments, strings.TrimSpace(*result.Text))
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return "", fmt.Errorf("send recognizer eof: %w", err)
	}

	final, err := readResult(conn)
	if err != nil {
		return "", fmt.Errorf("read final recognizer reply: %w", err)
	}
	if final.Text != nil && strings.TrimSpace(*final.Text) != "" {
		segments = append(segments, strings.TrimSpace(*final.Text))
	}

	transcript := strings.Join(segments, " ")
	c.logger.Debug("recognition complete",
		"pcm_bytes", len(pcm),
		"segments", len(segments),
		"transcript_length", len(transcript),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return transcript, nil
}

func readResult(conn *websocket.Conn) (serverResult, error) {
	_, payload, err := conn.ReadMessage()
	if err != nil {
		return serverResult{}, err
	}
	var result serverResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return serverResult{}, fmt.Errorf("decode reply %q: %w", payload, err)
	}
	return result, nil
}

// Package enhance restores punctuation and casing on raw transcript text.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrEnhance indicates the enhancement engine failed after retries.
var ErrEnhance = errors.New("transcript enhancement failed")

// Client calls a remote text-enhancement service (a Silero-style
// punctuation/casing model behind HTTP). The client is constructed once
// per process and shared read-only across concurrent requests.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

// NewClient constructs an enhancement client for one service endpoint.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: 3,
		logger:     logger,
	}
}

type enhanceRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type enhanceResponse struct {
	Text string `json:"text"`
}

// Enhance applies the remote model to text for the given language code.
// Transient service failures are retried with exponential backoff; client
// errors (4xx) abort immediately. Callers must not pass empty text.
func (c *Client) Enhance(ctx context.Context, text string, language string) (string, error) {
	language = ResolveLanguage(text, language)

	body, err := json.Marshal(enhanceRequest{Text: text, Language: language})
	if err != nil {
		return "", fmt.Errorf("encode enhance request: %w", err)
	}

	var enhanced string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, payload))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, payload)
		}

		var decoded enhanceResponse
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return backoff.Permanent(fmt.Errorf("decode enhance response: %w", err))
		}
		enhanced = decoded.Text
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("enhance via %q (language %s): %v: %w", c.endpoint, language, err, ErrEnhance)
	}

	c.logger.Debug("transcript enhanced", "language", language, "length", len(enhanced))
	return enhanced, nil
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

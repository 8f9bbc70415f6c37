// Package summarize calls the Gemini generateContent API to produce short
// document summaries, with bounded retry and exponential backoff.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	defaultEndpoint       = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel          = "gemini-2.5-flash"
	defaultMaxRetries     = 3
	defaultTimeout        = 30 * time.Second
	defaultMaxPromptLen   = 10000
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// Options configures the client. Zero values fall back to the documented
// defaults; MaxRetries is clamped to its 1-10 valid range.
type Options struct {
	APIKey          string
	Model           string
	Endpoint        string
	MaxRetries      int
	Timeout         time.Duration
	MaxPromptLength int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
}

// Client is a Gemini HTTP client. The wire format is part of the worker's
// contract, so the request is built by hand rather than through an SDK.
type Client struct {
	opts       Options
	httpClient *http.Client
	log        zerolog.Logger
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback json.RawMessage `json:"promptFeedback"`
}

// NewClient builds a summarizer client.
func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.MaxRetries > 10 {
		opts.MaxRetries = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxPromptLength <= 0 {
		opts.MaxPromptLength = defaultMaxPromptLen
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{},
		log:        log.With().Str("component", "summarize").Logger(),
	}
}

// Summarize produces a summary of text no longer than maxLength characters.
// Blank input short-circuits to "" without a network call. Input beyond
// MaxPromptLength is cut before the request is built so the truncation bounds
// the outbound payload. After exhausting retries the error is a
// *TimeoutError or *RequestError; a usable 200 with a broken envelope is a
// *InvalidResponseError and is not retried.
func (c *Client) Summarize(ctx context.Context, text string, maxLength int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if maxLength <= 0 {
		maxLength = 200
	}
	if len(text) > c.opts.MaxPromptLength {
		c.log.Debug().Int("chars", len(text)).Int("limit", c.opts.MaxPromptLength).Msg("truncating prompt input")
		text = cutAtRune(text, c.opts.MaxPromptLength)
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(text, maxLength)}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s",
		strings.TrimSuffix(c.opts.Endpoint, "/"), c.opts.Model, c.opts.APIKey)

	var lastErr error
	timedOut := false
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			c.log.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("backoff", delay).Msg("retrying gemini request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		summary, retryable, err := c.attempt(ctx, url, payload)
		if err == nil {
			return summary, nil
		}
		if ctx.Err() != nil {
			// Caller cancellation wins over attempt-level classification.
			return "", ctx.Err()
		}
		if !retryable {
			return "", err
		}
		timedOut = errors.Is(err, context.DeadlineExceeded)
		lastErr = err
	}

	if timedOut {
		return "", &TimeoutError{Attempts: c.opts.MaxRetries, Err: lastErr}
	}
	var reqErr *RequestError
	if errors.As(lastErr, &reqErr) {
		return "", reqErr
	}
	return "", &RequestError{Err: lastErr}
}

// attempt performs one HTTP call under the per-attempt timeout. The second
// return value reports whether the failure may be retried.
func (c *Client) attempt(ctx context.Context, url string, payload []byte) (string, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures and per-attempt timeouts are retryable.
		return "", true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", true, &RequestError{StatusCode: resp.StatusCode, Body: clip(string(body), 512)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, &InvalidResponseError{Reason: "unparseable body", Err: err}
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, &InvalidResponseError{Reason: "no candidates"}
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), false, nil
}

func (c *Client) backoff(step int) time.Duration {
	delay := c.opts.InitialBackoff << step
	if delay > c.opts.MaxBackoff || delay <= 0 {
		delay = c.opts.MaxBackoff
	}
	return delay
}

func buildPrompt(text string, maxLength int) string {
	return fmt.Sprintf(
		"Summarize the following document in at most %d characters. Respond with only the summary text.\n\n%s",
		maxLength, text)
}

// cutAtRune cuts s to at most max bytes without splitting a rune, keeping the
// truncated prompt valid UTF-8.
func cutAtRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

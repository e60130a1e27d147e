// Package llm talks to a local Ollama-compatible model server and recovers
// structured JSON from model output that is not always well formed.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"certverify/internal/common/errors"
	"certverify/internal/common/logger"
)

// TextGenerator produces a model completion for a prompt. Implementations
// should return the raw assistant text without post-processing.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls the Ollama chat API.
type Client struct {
	baseURL     string
	model       string
	maxAttempts int
	httpClient  *http.Client
	log         logger.Logger
}

func NewClient(baseURL, model string, timeout time.Duration, maxAttempts int, log logger.Logger) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		model:       model,
		maxAttempts: maxAttempts,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Generate sends one chat turn and returns the assistant message. Temperature
// is pinned to zero so repeated runs over the same document stay stable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
		Format:   "json",
		Options:  chatOptions{Temperature: 0},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", errors.NewLLMCallFailedError(err)
	}

	var reply string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("model server returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("model server returned %d", resp.StatusCode))
		}

		var out chatResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("decode model response: %w", err)
		}
		if out.Error != "" {
			return backoff.Permanent(fmt.Errorf("model error: %s", out.Error))
		}
		reply = out.Message.Content
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.maxAttempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		c.log.WithError(err).Warn("model call failed")
		return "", errors.NewLLMCallFailedError(err)
	}
	return reply, nil
}

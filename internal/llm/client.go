// Package llm wraps the chat-completion endpoint used for free-text extraction.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY is missing for LLM parser")
	ErrEmptyResponse = errors.New("LLM returned empty content")
)

// Completer sends a system instruction plus a user message and returns the
// model's JSON-object reply.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}

// Config for the OpenAI-compatible client.
type Config struct {
	APIKey  string
	BaseURL string // empty = api.openai.com
	Model   string
	Timeout time.Duration
}

type Client struct {
	cfg    Config
	api    *openai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	var api *openai.Client
	if cfg.APIKey != "" {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		api = openai.NewClientWithConfig(oc)
	}
	return &Client{cfg: cfg, api: api, logger: logger}
}

// CompleteJSON runs one deterministic (temperature 0) completion and
// requests a JSON object reply. There is no retry.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	if c.api == nil {
		return "", ErrMissingAPIKey
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.complete.start", "req_id", rid, "model", c.cfg.Model, "text_len", len(user))

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		// go-openai отбрасывает 0 из-за omitempty
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		c.logger.Error("llm.complete.http_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		c.logger.Error("llm.complete.empty", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", ErrEmptyResponse
	}

	c.logger.Info("llm.complete.ok", "req_id", rid, "content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jtan124/jarvis-llm-agent/internal/metrics"
)

var (
	// ErrNotConfigured marks the unconfigured state (no API key set). Callers
	// match on it to pick a deterministic fallback path instead of retrying.
	ErrNotConfigured = errors.New("gemini api key not configured, set GEMINI_API_KEY")

	// ErrEmptyResponse means the call completed but carried no usable text.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// GeminiClient talks to Gemini through its OpenAI-compatible chat-completions
// surface, so the transport is go-openai with a custom base URL.
type GeminiClient struct {
	client  *openai.Client
	model   string
	Timeout time.Duration
}

// Compile-time interface conformance
var _ Client = (*GeminiClient)(nil)

// NewGeminiClient builds a client. An empty apiKey yields an unconfigured
// client whose every invocation fails fast with ErrNotConfigured; the process
// still starts.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}

	var oc *openai.Client
	if apiKey != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
		oc = openai.NewClientWithConfig(cfg)
	}

	return &GeminiClient{
		client:  oc,
		model:   model,
		Timeout: 30 * time.Second,
	}
}

// Configured reports whether an API key was supplied.
func (c *GeminiClient) Configured() bool { return c.client != nil }

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	to := c.Timeout
	if to <= 0 {
		to = 30 * time.Second
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, to)
}

// Ping checks provider reachability with a models listing.
func (c *GeminiClient) Ping(ctx context.Context) error {
	if c.client == nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return ErrNotConfigured
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.client.ListModels(ctx); err != nil {
		metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return fmt.Errorf("gemini ping failed: %w", err)
	}

	metrics.LLMPings.Inc(map[string]string{"provider": "gemini", "outcome": "ok"})
	return nil
}

// Chat performs one non-stream completion. A single attempt per invocation:
// retry policy, if any, belongs to the caller.
func (c *GeminiClient) Chat(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", ErrNotConfigured
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		metrics.LLMChats.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMChats.Inc(map[string]string{"provider": "gemini", "outcome": "error"})
		return "", ErrEmptyResponse
	}

	metrics.LLMChats.Inc(map[string]string{"provider": "gemini", "outcome": "ok"})
	metrics.LLMChatDur.Observe(map[string]string{"provider": "gemini", "outcome": "ok"}, time.Since(start).Seconds())
	return resp.Choices[0].Message.Content, nil
}

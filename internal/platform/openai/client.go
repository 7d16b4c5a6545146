package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/continuity-backend/internal/platform/ctxutil"
	"github.com/yungbote/continuity-backend/internal/platform/httpx"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai"
	DefaultModel   = "llama3-70b-8192"
	DefaultTimeout = 120 * time.Second

	chatCompletionsPath = "/v1/chat/completions"
)

// ChatRequest is one system+user exchange against an OpenAI-compatible endpoint.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Client talks to an OpenAI-compatible chat completions API.
type Client interface {
	// Chat returns the first choice's message content, which may be empty.
	Chat(ctx context.Context, req ChatRequest) (string, error)
	Model() string
}

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client
}

type client struct {
	log  *logger.Logger
	opts Options
}

// normalize fills defaults and reports the first unusable setting.
func (o Options) normalize() (Options, error) {
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.APIKey == "" {
		return o, fmt.Errorf("missing REASONING_API_KEY")
	}
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model = strings.TrimSpace(o.Model); o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	return o, nil
}

func NewClient(log *logger.Logger, opts Options) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	return &client{log: log.With("client", "ReasoningClient"), opts: opts}, nil
}

func (c *client) Model() string { return c.opts.Model }

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("reasoning http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := otel.Tracer("continuity/reasoning").Start(ctx, "reasoning.chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.opts.Model),
		attribute.Float64("llm.temperature", req.Temperature),
		attribute.Int("llm.max_tokens", req.MaxTokens),
	)

	body := chatCompletionsRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp chatCompletionsResponse
	start := time.Now()
	if err := c.post(ctx, chatCompletionsPath, body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("llm.completion_tokens", resp.Usage.CompletionTokens),
	)

	fields := append([]interface{}{
		"model", c.opts.Model,
		"latency_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	}, ctxutil.LogFields(ctx)...)
	c.log.Debug("Reasoning request completed", fields...)

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// post sends body as JSON and decodes a 2xx reply into out, retrying transient failures.
func (c *client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	backoff := httpx.DefaultBackoff()
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, raw, err := c.send(ctx, path, payload)
		if err == nil {
			if jErr := json.Unmarshal(raw, out); jErr != nil {
				return fmt.Errorf("reasoning decode error: %w", jErr)
			}
			return nil
		}
		if attempt >= c.opts.MaxRetries || !httpx.Retryable(err) {
			return err
		}
		wait := backoff.Delay(attempt, resp)
		c.log.Warn("Reasoning request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.opts.MaxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if err := httpx.Wait(ctx, wait); err != nil {
			return err
		}
	}
}

func (c *client) send(ctx context.Context, path string, payload []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	switch {
	case err != nil:
		return resp, nil, err
	case resp.StatusCode/100 != 2:
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return resp, raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ukaji3/sheetinfer-go/internal/logging"
)

const (
	defaultBaseURL    = "https://api.openai.com"
	defaultModel      = "gpt-4o-mini"
	defaultTimeout    = 300 * time.Second
	defaultBackoff    = time.Second
	maxErrorBodyBytes = 2048
)

// OpenAIConfig configures an OpenAIClient. Any server speaking the OpenAI
// chat completions protocol with json_schema response formats works.
type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// MaxRetries bounds retries of rate-limited or unavailable responses.
	MaxRetries int
	// Backoff is the first retry delay; it doubles on every attempt.
	Backoff time.Duration
	Logger  *slog.Logger
}

// OpenAIClient is a Client backed by the chat completions endpoint.
type OpenAIClient struct {
	cfg    OpenAIConfig
	client *http.Client
	logger *slog.Logger
}

// NewOpenAIClient returns a client for cfg, filling unset fields with
// defaults.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &OpenAIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *OpenAIClient) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
}

// Complete sends req and returns the JSON content of the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	name := req.SchemaName
	if name == "" {
		name = "output"
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Instructions},
			{Role: "user", Content: req.Input},
		},
		Temperature: c.cfg.Temperature,
		ResponseFormat: responseFormat{
			Type:       "json_schema",
			JSONSchema: jsonSchemaFormat{Name: name, Strict: true, Schema: req.Schema},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	delay := c.cfg.Backoff
	for attempt := 0; ; attempt++ {
		out, err := c.do(ctx, body)
		if err == nil || !Retryable(err) || attempt >= c.cfg.MaxRetries {
			return out, err
		}
		c.logger.Warn("completion retry", "schema", name, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (c *OpenAIClient) do(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrUnavailable
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, requestError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, ErrEmpty
	}
	choice := decoded.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: %s", ErrRefused, choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return nil, ErrTruncated
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, ErrEmpty
	}
	if !json.Valid([]byte(content)) {
		return nil, errors.New("completion content is not valid JSON")
	}
	return json.RawMessage(content), nil
}

func requestError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("completion request failed: %s: %s", resp.Status, envelope.Error.Message)
	}
	return fmt.Errorf("completion request failed: %s", resp.Status)
}

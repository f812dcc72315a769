// Package gpt talks to an OpenAI-compatible chat-completions endpoint
// (OpenAI or an Azure OpenAI deployment). It backs the alternative dish
// grader.
package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
)

var tracer = otel.Tracer("github.com/hammamikhairi/celestialwok/internal/gpt")

// Completion is one single-turn request.
type Completion struct {
	System string
	Prompt string
	JPEG   []byte // optional photo sent ahead of the prompt
	JSON   bool   // ask for a JSON object reply
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithModel sets the model name. Azure deployments leave it empty.
func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func WithTemperature(t float64) ClientOption {
	return func(c *Client) { c.temperature = t }
}

func WithMaxTokens(n int) ClientOption {
	return func(c *Client) { c.maxTokens = n }
}

func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// Client sends completions to a single endpoint URL.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	http        *http.Client
	log         *logger.Logger
}

// NewClient creates a client. endpoint is the full chat/completions URL,
// query string included for Azure ("...?api-version=2024-02-01").
func NewClient(endpoint, apiKey string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:    endpoint,
		apiKey:      apiKey,
		temperature: 0.4,
		maxTokens:   600,
		http: &http.Client{
			Timeout:   45 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete runs one completion and returns the reply text. A reply with
// no text is reported as domain.ErrNoContent.
func (c *Client) Complete(ctx context.Context, in Completion) (_ string, err error) {
	ctx, span := tracer.Start(ctx, "gpt complete")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("image", len(in.JPEG) > 0),
		attribute.Bool("json", in.JSON),
	)

	start := time.Now()
	defer func() {
		metrics.RecordBackendCall("gpt_chat", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	body := chatRequest{
		Model:       c.model,
		Messages:    in.messages(),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if in.JSON {
		body.ResponseFormat = &replyFormat{Type: "json_object"}
	}

	var out chatResponse
	if err := c.post(ctx, body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("gpt: %w", domain.ErrNoContent)
	}

	choice := out.Choices[0]
	c.log.Debug("gpt: reply %d chars, finish=%s", len(choice.Message.Content), choice.FinishReason)
	return choice.Message.Content, nil
}

func (c *Client) post(ctx context.Context, body chatRequest, out *chatResponse) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("gpt: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("gpt: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Azure reads api-key, OpenAI reads the bearer token.
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gpt: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("gpt: reading response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil && resp.StatusCode == http.StatusOK {
		return fmt.Errorf("gpt: decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil && out.Error.Message != "" {
			return fmt.Errorf("gpt: %s: %s", resp.Status, out.Error.Message)
		}
		return fmt.Errorf("gpt: %s", resp.Status)
	}
	return nil
}

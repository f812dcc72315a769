// Package gemini adapts the Gemini API (google.golang.org/genai) to the
// domain ports: recipe details, the dish catalog, narration audio, step
// images and dish grading.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
)

// Models groups the model names used per operation.
type Models struct {
	Text   string
	Speech string
	Image  string
}

// DefaultModels mirrors the models the app was designed against.
var DefaultModels = Models{
	Text:   "gemini-2.5-flash",
	Speech: "gemini-2.5-flash-preview-tts",
	Image:  "gemini-2.5-flash-image",
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another endpoint (tests, proxies).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithModels overrides the model names. Empty fields keep the default.
func WithModels(m Models) ClientOption {
	return func(c *Client) {
		if m.Text != "" {
			c.models.Text = m.Text
		}
		if m.Speech != "" {
			c.models.Speech = m.Speech
		}
		if m.Image != "" {
			c.models.Image = m.Image
		}
	}
}

// WithVoice sets the prebuilt TTS voice.
func WithVoice(v string) ClientOption {
	return func(c *Client) { c.voice = v }
}

// WithLanguage sets the language recipe text and feedback are written in,
// e.g. "Traditional Chinese".
func WithLanguage(lang string) ClientOption {
	return func(c *Client) { c.language = lang }
}

// WithRequestsPerMinute limits calls per model. Zero disables limiting.
func WithRequestsPerMinute(rpm int) ClientOption {
	return func(c *Client) { c.rpm = rpm }
}

// WithHTTPTimeout bounds each HTTP round trip.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// Client talks to the Gemini API through the genai SDK.
type Client struct {
	genai    *genai.Client
	baseURL  string
	models   Models
	voice    string
	language string
	rpm      int
	http     *http.Client
	log      *logger.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var (
	_ domain.DetailFetcher   = (*Client)(nil)
	_ domain.SpeechGenerator = (*Client)(nil)
	_ domain.ImageGenerator  = (*Client)(nil)
	_ domain.DishGrader      = (*Client)(nil)
)

// NewClient creates a Gemini client authenticated with apiKey. Requests
// go through an otelhttp transport.
func NewClient(ctx context.Context, apiKey string, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	c := &Client{
		models:   DefaultModels,
		voice:    "Kore",
		language: "Traditional Chinese",
		rpm:      60,
		http: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log:      log,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, o := range opts {
		o(c)
	}

	g, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.http,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c.genai = g
	return c, nil
}

// limiter returns the per-model limiter, or nil when limiting is off.
func (c *Client) limiter(model string) *rate.Limiter {
	if c.rpm <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.limiters[model]; ok {
		return l
	}
	burst := max(1, c.rpm/5)
	l := rate.NewLimiter(rate.Limit(float64(c.rpm)/60.0), burst)
	c.limiters[model] = l
	c.log.Debug("gemini: rate limiter for %s: %d rpm, burst %d", model, c.rpm, burst)
	return l
}

// generate runs one GenerateContent call. op names the call in spans,
// logs and metrics.
func (c *Client) generate(ctx context.Context, op, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (_ *genai.GenerateContentResponse, err error) {
	ctx, span := tracer.Start(ctx, "gemini "+op)
	defer span.End()
	span.SetAttributes(attribute.String("request.model", model))

	start := time.Now()
	defer func() {
		metrics.RecordBackendCall(op, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if l := c.limiter(model); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, fmt.Errorf("gemini: rate limit: %w", err)
		}
	}

	c.log.Debug("gemini: %s -> %s", op, model)
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.Int("response.status_code", apiErr.Code))
			return nil, fmt.Errorf("gemini: %s: %d %s", op, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("gemini: %s: %w", op, err)
	}

	c.log.Debug("gemini: %s done in %s", op, time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// generateJSON runs a structured-output call and decodes the reply into out.
func (c *Client) generateJSON(ctx context.Context, op string, contents []*genai.Content, out any) error {
	schema, err := schemaFor(out)
	if err != nil {
		return err
	}

	resp, err := c.generate(ctx, op, c.models.Text, contents, &genai.GenerateContentConfig{
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: schema,
	})
	if err != nil {
		return err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("gemini: %s: %w", op, domain.ErrNoContent)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("gemini: %s: decode reply: %w", op, err)
	}
	return nil
}

// inline returns the first non-empty inline blob of the first candidate.
func inline(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData
		}
	}
	return nil
}

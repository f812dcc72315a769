// Package speech provides the Azure Cognitive Services text-to-speech
// backend. It returns the same base64 PCM payload as the Gemini speech
// model so either can feed the narration pipeline.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
	"github.com/hammamikhairi/celestialwok/internal/metrics"
)

var tracer = otel.Tracer("github.com/hammamikhairi/celestialwok/internal/speech")

var _ domain.SpeechGenerator = (*AzureClient)(nil)

type AzureOption func(*AzureClient)

func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) { c.voice = voice }
}

// WithAudioFormat sets X-Microsoft-OutputFormat. Anything other than a
// raw 24 kHz 16-bit mono format will not decode downstream.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) { c.format = format }
}

func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) { c.http.Timeout = d }
}

// WithEndpoint points the client at a different URL than the regional
// cognitiveservices one.
func WithEndpoint(url string) AzureOption {
	return func(c *AzureClient) { c.endpoint = url }
}

// AzureClient is a domain.SpeechGenerator backed by the Azure Speech
// REST API.
type AzureClient struct {
	key      string
	endpoint string
	voice    string
	format   string
	http     *http.Client
	log      *logger.Logger
}

func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:      key,
		endpoint: "https://" + region + ".tts.speech.microsoft.com/cognitiveservices/v1",
		voice:    DefaultVoice,
		format:   DefaultAudioFormat,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

func (c *AzureClient) Voice() string { return c.voice }

// GenerateSpeech synthesizes text and returns the PCM audio base64
// encoded. An empty audio body is reported as domain.ErrNoContent.
func (c *AzureClient) GenerateSpeech(ctx context.Context, text string) (_ string, err error) {
	ctx, span := tracer.Start(ctx, "azure speech")
	defer span.End()
	span.SetAttributes(attribute.String("voice", c.voice), attribute.Int("text.length", len(text)))

	start := time.Now()
	defer func() {
		metrics.RecordBackendCall("azure_speech", time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	audio, err := c.synthesize(ctx, text)
	if err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("azure tts: %w", domain.ErrNoContent)
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

// synthesize returns the raw audio for text.
func (c *AzureClient) synthesize(ctx context.Context, text string) ([]byte, error) {
	ssml, err := c.buildSSML(text)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("azure tts: %w", err)
	}
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "CelestialWok/1.0")

	c.log.Debug("azure tts: %d chars, voice %s", len(text), c.voice)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("azure tts: %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure tts: reading audio: %w", err)
	}
	c.log.Debug("azure tts: got %s of audio", humanize.Bytes(uint64(len(pcm))))
	return pcm, nil
}

// buildSSML creates SSML markup for the synthesis request. The text is
// XML-escaped.
func (c *AzureClient) buildSSML(text string) (string, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", fmt.Errorf("escaping ssml text: %w", err)
	}
	lang := xmlLangFor(c.voice)
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice xml:lang='%s' name='%s'>%s</voice></speak>`,
		lang, lang, c.voice, escaped.String(),
	), nil
}

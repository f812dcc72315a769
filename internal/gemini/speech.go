package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// GenerateSpeech synthesizes text with the TTS model. The payload is
// base64 16-bit mono PCM at 24 kHz.
func (c *Client) GenerateSpeech(ctx context.Context, text string) (string, error) {
	resp, err := c.generate(ctx, "speech", c.models.Speech, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	})
	if err != nil {
		return "", err
	}

	blob := inline(resp)
	if blob == nil {
		return "", fmt.Errorf("gemini: speech: %w", domain.ErrNoContent)
	}
	return base64.StdEncoding.EncodeToString(blob.Data), nil
}

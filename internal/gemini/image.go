package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// GenerateImage renders prompt with the image model and returns a data
// URI.
func (c *Client) GenerateImage(ctx context.Context, prompt string, aspect domain.AspectRatio) (string, error) {
	if aspect == "" {
		aspect = domain.AspectSquare
	}

	resp, err := c.generate(ctx, "image", c.models.Image, genai.Text(prompt), &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: string(aspect)},
	})
	if err != nil {
		return "", err
	}

	blob := inline(resp)
	if blob == nil {
		return "", fmt.Errorf("gemini: image: %w", domain.ErrNoContent)
	}
	mime := blob.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(blob.Data)), nil
}

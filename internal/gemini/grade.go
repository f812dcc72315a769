package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// GradeDish has the text model judge a JPEG photo of the finished dish.
func (c *Client) GradeDish(ctx context.Context, image []byte, recipeName string) (*domain.GradingResult, error) {
	prompt := fmt.Sprintf("Act as a master chef judge. Rate this photo of %s. Analyze the color, "+
		"texture, and presentation. Give a score (0-100) and constructive feedback in %s.",
		recipeName, c.language)

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(image, "image/jpeg"),
		genai.NewPartFromText(prompt),
	}, genai.RoleUser)}

	var out gradingOutput
	if err := c.generateJSON(ctx, "grade", contents, &out); err != nil {
		return nil, err
	}
	return &domain.GradingResult{Score: out.Score, Feedback: out.Feedback, Tips: out.Tips}, nil
}

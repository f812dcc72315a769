package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

var _ domain.DishGrader = (*Grader)(nil)

const graderSystemPrompt = `You are a strict but encouraging Chinese cuisine chef judging a home cook's dish from a photo.
Reply with a JSON object only, no prose around it:
{"score": <number 0-100>, "feedback": "<one or two sentences>", "tips": "<one concrete improvement>"}`

// Grader scores dish photos through a vision-capable chat model.
type Grader struct {
	client   *Client
	language string
	log      *logger.Logger
}

// NewGrader creates a grader. language names the language feedback is
// written in, e.g. "English".
func NewGrader(client *Client, language string, log *logger.Logger) *Grader {
	return &Grader{client: client, language: language, log: log}
}

// GradeDish sends the photo and parses the JSON verdict.
func (g *Grader) GradeDish(ctx context.Context, image []byte, recipeName string) (*domain.GradingResult, error) {
	prompt := fmt.Sprintf("This should be %s. Judge its appearance, color and plating. Write feedback and tips in %s.",
		recipeName, g.language)

	reply, err := g.client.Complete(ctx, Completion{
		System: graderSystemPrompt,
		Prompt: prompt,
		JPEG:   image,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}

	var res domain.GradingResult
	if err := json.Unmarshal([]byte(stripFences(reply)), &res); err != nil {
		return nil, fmt.Errorf("gpt: decode verdict: %w", err)
	}
	g.log.Debug("gpt: graded %s: %.0f", recipeName, res.Score)
	return &res, nil
}

// stripFences removes a ```json ... ``` wrapper some models add even in
// JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// FetchRecipeDetail asks the text model for a full cooking guide. The
// returned detail carries the requested name.
func (c *Client) FetchRecipeDetail(ctx context.Context, name string) (*domain.RecipeDetail, error) {
	prompt := fmt.Sprintf("Create a detailed cooking guide for %s. Include a warm cultural intro, "+
		"precise ingredients with visual prompts, and clear step-by-step cooking instructions with "+
		"visual prompts. Return in %s (prompts in English).", name, c.language)

	var out detailOutput
	if err := c.generateJSON(ctx, "recipe_detail", genai.Text(prompt), &out); err != nil {
		return nil, err
	}
	if len(out.Steps) == 0 {
		return nil, fmt.Errorf("gemini: recipe_detail: no steps: %w", domain.ErrNoContent)
	}

	c.log.Debug("gemini: %s has %d ingredients, %d steps", name, len(out.Ingredients), len(out.Steps))
	return out.toDomain(name), nil
}

package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/recipe"
)

// Catalog is a generated list of dishes. The list is fetched once and
// kept for the life of the process; a failed fetch is retried on the
// next call.
type Catalog struct {
	client *Client
	count  int

	mu      sync.Mutex
	recipes []domain.RecipeSummary
}

var _ domain.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalog of count dishes.
func NewCatalog(client *Client, count int) *Catalog {
	if count <= 0 {
		count = 30
	}
	return &Catalog{client: client, count: count}
}

func (g *Catalog) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.recipes != nil {
		return g.recipes, nil
	}

	prompt := fmt.Sprintf("List %d diverse, popular, and authentic Chinese dishes (including Sichuan, "+
		"Cantonese, Taiwanese, etc) with IDs, names (in %s), short descriptions, difficulty, time, and category.",
		g.count, g.client.language)

	var out catalogOutput
	if err := g.client.generateJSON(ctx, "catalog", genai.Text(prompt), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("gemini: catalog: %w", domain.ErrNoContent)
	}

	g.recipes = out
	return g.recipes, nil
}

// Search filters the list by name or category, case-insensitively.
func (g *Catalog) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	all, err := g.List(ctx)
	if err != nil {
		return nil, err
	}
	return recipe.Filter(all, query), nil
}

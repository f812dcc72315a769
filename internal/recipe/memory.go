// Package recipe provides the built-in house recipes and helpers for
// combining recipe catalogs.
package recipe

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Catalog       = (*MemorySource)(nil)
	_ domain.DetailFetcher = (*MemorySource)(nil)
)

// MemorySource holds fully written recipes in memory. Safe for concurrent
// reads.
type MemorySource struct {
	mu      sync.RWMutex
	recipes map[string]*domain.RecipeDetail
	log     *logger.Logger
}

// NewMemorySource creates a source preloaded with the house recipes.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		recipes: make(map[string]*domain.RecipeDetail),
		log:     log,
	}
	src.seed()
	return src
}

// List returns summaries of all recipes, sorted by name.
func (s *MemorySource) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing house recipes, count=%d", len(s.recipes))

	out := make([]domain.RecipeSummary, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r.RecipeSummary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Search returns recipes whose name or category contains the query.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("searching house recipes for: %s", query)
	return Filter(all, query), nil
}

// FetchRecipeDetail looks a recipe up by ID or by case-insensitive name.
func (s *MemorySource) FetchRecipeDetail(ctx context.Context, name string) (*domain.RecipeDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.recipes[name]; ok {
		return r, nil
	}
	for _, r := range s.recipes {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	s.log.Debug("recipe not found: %s", name)
	return nil, domain.ErrNotFound
}

// Add stores a recipe, replacing any recipe with the same ID.
func (s *MemorySource) Add(r *domain.RecipeDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes[r.ID] = r
}

// Filter keeps summaries whose name or category contains query,
// case-insensitively. An empty query keeps everything.
func Filter(all []domain.RecipeSummary, query string) []domain.RecipeSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	var out []domain.RecipeSummary
	for _, r := range all {
		if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Category), q) {
			out = append(out, r)
		}
	}
	return out
}

// seed populates the source with the house recipes.
func (s *MemorySource) seed() {
	recipes := []*domain.RecipeDetail{
		tomatoEggStirFry(),
		mapoTofu(),
		scallionPancakes(),
	}
	for _, r := range recipes {
		s.recipes[r.ID] = r
	}
	s.log.Debug("seeded %d recipes", len(recipes))
}

func tomatoEggStirFry() *domain.RecipeDetail {
	return &domain.RecipeDetail{
		RecipeSummary: domain.RecipeSummary{
			ID:          "tomato-egg",
			Name:        "Tomato Egg Stir-fry",
			Description: "Silky eggs and jammy tomatoes. The first dish most Chinese home cooks learn.",
			Difficulty:  domain.DifficultyEasy,
			Time:        "15 min",
			Category:    "Home-style",
		},
		Intro: "Tomato and egg is comfort food in every Chinese household, sweet, sour and ready in minutes",
		Ingredients: []domain.Ingredient{
			{Item: "tomatoes", Amount: "3 medium", VisualPrompt: "three ripe red tomatoes on a wooden board"},
			{Item: "eggs", Amount: "4", VisualPrompt: "four brown eggs in a small bowl"},
			{Item: "scallion", Amount: "1 stalk"},
			{Item: "sugar", Amount: "1 tsp"},
			{Item: "salt", Amount: "to taste"},
			{Item: "neutral oil", Amount: "2 tbsp"},
		},
		Steps: []domain.CookingStep{
			{Instruction: "Cut the tomatoes into wedges and slice the scallion.", VisualPrompt: "tomato wedges and sliced scallion on a cutting board"},
			{Instruction: "Beat the eggs with a pinch of salt until no streaks remain.", VisualPrompt: "whisked eggs in a bowl with chopsticks"},
			{Instruction: "Heat oil until shimmering, pour in the eggs and push them gently until just set. Remove to a plate.", VisualPrompt: "soft scrambled eggs in a hot wok"},
			{Instruction: "Stir-fry the tomatoes until they soften and release their juice. Add sugar and salt.", VisualPrompt: "tomatoes breaking down into a glossy sauce in a wok"},
			{Instruction: "Return the eggs, toss to coat and finish with scallion.", VisualPrompt: "tomato egg stir-fry plated with scallions"},
		},
	}
}

func mapoTofu() *domain.RecipeDetail {
	return &domain.RecipeDetail{
		RecipeSummary: domain.RecipeSummary{
			ID:          "mapo-tofu",
			Name:        "Mapo Tofu",
			Description: "Soft tofu in a numbing, fiery Sichuan sauce with minced beef.",
			Difficulty:  domain.DifficultyMedium,
			Time:        "25 min",
			Category:    "Sichuan",
		},
		Intro: "Mapo tofu comes from Chengdu and balances heat, numbness and a silky texture",
		Ingredients: []domain.Ingredient{
			{Item: "soft tofu", Amount: "400 g", VisualPrompt: "a block of soft white tofu"},
			{Item: "minced beef", Amount: "100 g"},
			{Item: "doubanjiang", Amount: "2 tbsp", VisualPrompt: "a spoonful of red chili bean paste"},
			{Item: "Sichuan peppercorns", Amount: "1 tsp"},
			{Item: "garlic", Amount: "3 cloves"},
			{Item: "cornstarch slurry", Amount: "2 tbsp"},
			{Item: "stock", Amount: "200 ml"},
		},
		Steps: []domain.CookingStep{
			{Instruction: "Cut the tofu into cubes and simmer them in salted water for two minutes. Drain.", VisualPrompt: "tofu cubes simmering in a pot"},
			{Instruction: "Toast the Sichuan peppercorns in a dry wok, then grind them.", VisualPrompt: "toasted Sichuan peppercorns in a mortar"},
			{Instruction: "Fry the beef until crisp, add doubanjiang and garlic and cook until the oil turns red.", VisualPrompt: "minced beef frying with red chili bean paste"},
			{Instruction: "Add the stock and tofu, simmer for five minutes without stirring hard.", VisualPrompt: "tofu simmering in red sauce"},
			{Instruction: "Thicken with the slurry in two additions and sprinkle the ground peppercorns.", VisualPrompt: "glossy mapo tofu sprinkled with ground pepper"},
		},
	}
}

func scallionPancakes() *domain.RecipeDetail {
	return &domain.RecipeDetail{
		RecipeSummary: domain.RecipeSummary{
			ID:          "scallion-pancakes",
			Name:        "Scallion Pancakes",
			Description: "Flaky, chewy layered flatbread from Taiwanese night markets.",
			Difficulty:  domain.DifficultyHard,
			Time:        "60 min",
			Category:    "Taiwanese",
		},
		Intro: "Scallion pancakes are a night market favourite, built from a hot water dough rolled into many thin layers",
		Ingredients: []domain.Ingredient{
			{Item: "all-purpose flour", Amount: "300 g"},
			{Item: "hot water", Amount: "180 ml"},
			{Item: "scallions", Amount: "4 stalks", VisualPrompt: "a bunch of finely chopped scallions"},
			{Item: "sesame oil", Amount: "2 tbsp"},
			{Item: "salt", Amount: "1 tsp"},
		},
		Steps: []domain.CookingStep{
			{Instruction: "Mix the flour with hot water into a shaggy dough, knead until smooth and rest for thirty minutes.", VisualPrompt: "smooth dough ball resting in a bowl"},
			{Instruction: "Roll a piece thin, brush with sesame oil, then scatter salt and scallions.", VisualPrompt: "thin dough brushed with oil and topped with scallions"},
			{Instruction: "Roll it up into a rope, coil it into a snail and flatten it again.", VisualPrompt: "coiled dough spiral on a floured surface"},
			{Instruction: "Pan-fry over medium heat until golden on both sides, scrunching to open the layers.", VisualPrompt: "golden flaky scallion pancake in a pan"},
		},
	}
}

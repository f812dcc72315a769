// Package domain defines the core types and interfaces for the guided
// cooking session. All other packages depend on domain; domain depends on
// nothing.
package domain

// Difficulty is the catalog's coarse difficulty rating.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// RecipeSummary is a lightweight catalog entry.
type RecipeSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty" jsonschema:"enum=Easy,enum=Medium,enum=Hard"`
	Time        string     `json:"time"`
	Category    string     `json:"category"`
}

// RecipeDetail is the full guide for one dish. It is immutable once
// fetched for a session.
type RecipeDetail struct {
	RecipeSummary
	Intro       string        `json:"intro"`
	Ingredients []Ingredient  `json:"ingredients"`
	Steps       []CookingStep `json:"steps"`
}

// Ingredient is a single ingredient line with its visual prompt.
type Ingredient struct {
	Item         string `json:"item"`
	Amount       string `json:"amount"`
	VisualPrompt string `json:"visualDescription"`
}

// CookingStep is one instruction of the ordered, 0-indexed step list.
type CookingStep struct {
	Instruction  string `json:"instruction"`
	VisualPrompt string `json:"visualDescription"`
}

// GradingResult is the scored feedback for a photo of the finished dish.
type GradingResult struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
	Tips     string  `json:"tips"`
}

// Valid reports whether the score lies within [0, 100].
func (g *GradingResult) Valid() bool {
	return g != nil && g.Score >= 0 && g.Score <= 100
}

// AspectRatio selects the shape of a generated image.
type AspectRatio string

const (
	AspectSquare     AspectRatio = "1:1"
	AspectWidescreen AspectRatio = "16:9"
)

package gemini

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/hammamikhairi/celestialwok/internal/domain"
)

// Structured-output shapes. Field descriptions are sent to the model as
// part of the schema.

type detailOutput struct {
	Intro       string             `json:"intro" jsonschema:"description=A warm appetizing introduction to the dish"`
	Ingredients []ingredientOutput `json:"ingredients"`
	Steps       []stepOutput       `json:"steps" jsonschema:"description=Step by step cooking instructions"`
}

type ingredientOutput struct {
	Item              string `json:"item" jsonschema:"description=Name of the ingredient"`
	Amount            string `json:"amount" jsonschema:"description=Quantity"`
	VisualDescription string `json:"visualDescription" jsonschema:"description=A short English prompt to generate a clear isolated photo of this ingredient"`
}

type stepOutput struct {
	Instruction       string `json:"instruction" jsonschema:"description=The instruction text"`
	VisualDescription string `json:"visualDescription" jsonschema:"description=A short English prompt to generate a realistic photo of this cooking step being performed"`
}

type gradingOutput struct {
	Score    float64 `json:"score" jsonschema:"description=Score out of 100 based on appearance,minimum=0,maximum=100"`
	Feedback string  `json:"feedback" jsonschema:"description=Constructive feedback"`
	Tips     string  `json:"tips" jsonschema:"description=One pro tip to improve next time"`
}

type catalogOutput []domain.RecipeSummary

func (d detailOutput) toDomain(name string) *domain.RecipeDetail {
	out := &domain.RecipeDetail{
		RecipeSummary: domain.RecipeSummary{Name: name},
		Intro:         d.Intro,
		Ingredients:   make([]domain.Ingredient, 0, len(d.Ingredients)),
		Steps:         make([]domain.CookingStep, 0, len(d.Steps)),
	}
	for _, ing := range d.Ingredients {
		out.Ingredients = append(out.Ingredients, domain.Ingredient{
			Item:         ing.Item,
			Amount:       ing.Amount,
			VisualPrompt: ing.VisualDescription,
		})
	}
	for _, st := range d.Steps {
		out.Steps = append(out.Steps, domain.CookingStep{
			Instruction:  st.Instruction,
			VisualPrompt: st.VisualDescription,
		})
	}
	return out
}

// schemaFor reflects v into an inline JSON schema suitable for
// responseJsonSchema.
func schemaFor(v any) (json.RawMessage, error) {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(t)
	schema.Version = ""
	raw, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal schema: %w", err)
	}
	return raw, nil
}

package visuals

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

type fakeImages struct {
	mu      sync.Mutex
	prompts []string
	aspects []domain.AspectRatio
	err     error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt string, aspect domain.AspectRatio) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.aspects = append(f.aspects, aspect)
	if f.err != nil {
		return "", f.err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(prompt)), nil
}

func quiet() *logger.Logger { return logger.New(logger.LevelOff, nil) }

func TestHeroUsesWidescreen(t *testing.T) {
	gen := &fakeImages{}
	svc := New(gen, quiet())

	img := svc.Hero(context.Background(), "Mapo Tofu")
	if img.Placeholder() {
		t.Fatal("unexpected placeholder")
	}
	if gen.aspects[0] != domain.AspectWidescreen {
		t.Errorf("aspect = %s, want 16:9", gen.aspects[0])
	}
	want := "Professional food photography of Mapo Tofu, authentic Chinese cuisine, appetizing, high resolution, soft lighting"
	if gen.prompts[0] != want {
		t.Errorf("prompt = %q", gen.prompts[0])
	}
}

func TestIngredientPromptFallback(t *testing.T) {
	tests := []struct {
		ing  domain.Ingredient
		want string
	}{
		{domain.Ingredient{Item: "scallion", VisualPrompt: "chopped scallions on a board"}, "chopped scallions on a board"},
		{domain.Ingredient{Item: "ginger"}, "Fresh ginger ingredient, isolated white background, studio lighting"},
		{domain.Ingredient{Item: "garlic", VisualPrompt: "  "}, "Fresh garlic ingredient, isolated white background, studio lighting"},
	}
	for _, tt := range tests {
		if got := IngredientPrompt(tt.ing); got != tt.want {
			t.Errorf("IngredientPrompt(%+v) = %q, want %q", tt.ing, got, tt.want)
		}
	}
}

func TestFetchIsMemoized(t *testing.T) {
	gen := &fakeImages{}
	svc := New(gen, quiet())
	ctx := context.Background()
	step := domain.CookingStep{Instruction: "Fry", VisualPrompt: "wok with sizzling oil"}

	a := svc.Step(ctx, step)
	b := svc.Step(ctx, step)
	if a.Ref != b.Ref {
		t.Error("refs differ")
	}
	if len(gen.prompts) != 1 {
		t.Errorf("generator calls = %d, want 1", len(gen.prompts))
	}
}

func TestFetchFailureIsPlaceholder(t *testing.T) {
	for _, err := range []error{domain.ErrNoContent, errors.New("503")} {
		gen := &fakeImages{err: err}
		svc := New(gen, quiet())

		img := svc.Fetch(context.Background(), "dumplings", domain.AspectSquare)
		if !img.Placeholder() {
			t.Errorf("%v: expected placeholder", err)
		}
		svc.Fetch(context.Background(), "dumplings", domain.AspectSquare)
		if len(gen.prompts) != 2 {
			t.Errorf("%v: failures should not be cached, calls = %d", err, len(gen.prompts))
		}
	}
}

func TestEmptyPromptSkipsBackend(t *testing.T) {
	gen := &fakeImages{}
	svc := New(gen, quiet())
	if img := svc.Step(context.Background(), domain.CookingStep{Instruction: "Rest"}); !img.Placeholder() {
		t.Error("empty prompt should be a placeholder")
	}
	if len(gen.prompts) != 0 {
		t.Error("backend called for empty prompt")
	}
}

func TestImageBytes(t *testing.T) {
	img := Image{Ref: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png!"))}
	raw, mime, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if string(raw) != "png!" || mime != "image/png" {
		t.Errorf("got %q %q", raw, mime)
	}

	if _, _, err := (Image{Ref: "https://example.com/a.png"}).Bytes(); err == nil {
		t.Error("expected error for non data URI")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	svc := New(&fakeImages{}, quiet(), WithExportDir(dir))

	svc.Fetch(context.Background(), "bok choy", domain.AspectSquare)
	path, ok := svc.Path("bok choy")
	if !ok {
		t.Fatal("image not exported")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "bok choy" {
		t.Errorf("exported %q", raw)
	}
}

package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

type stubFetcher struct {
	detail *domain.RecipeDetail
	err    error
	calls  int
}

func (s *stubFetcher) FetchRecipeDetail(context.Context, string) (*domain.RecipeDetail, error) {
	s.calls++
	return s.detail, s.err
}

type stubCatalog struct {
	list []domain.RecipeSummary
	err  error
}

func (s stubCatalog) List(context.Context) ([]domain.RecipeSummary, error) { return s.list, s.err }
func (s stubCatalog) Search(ctx context.Context, q string) ([]domain.RecipeSummary, error) {
	return Filter(s.list, q), s.err
}

func TestChainPrefersHouseRecipes(t *testing.T) {
	house := NewMemorySource(logger.New(logger.LevelOff, nil))
	remote := &stubFetcher{detail: &domain.RecipeDetail{Intro: "generated"}}
	chain := Chain{house, remote}
	ctx := context.Background()

	d, err := chain.FetchRecipeDetail(ctx, "Mapo Tofu")
	if err != nil {
		t.Fatal(err)
	}
	if d.ID != "mapo-tofu" || remote.calls != 0 {
		t.Fatalf("house recipe not served locally (id=%q, remote calls=%d)", d.ID, remote.calls)
	}

	d, err = chain.FetchRecipeDetail(ctx, "Dan Dan Noodles")
	if err != nil {
		t.Fatal(err)
	}
	if d.Intro != "generated" || remote.calls != 1 {
		t.Fatal("unknown dish should fall through to the generator")
	}
}

func TestChainStopsOnRealError(t *testing.T) {
	boom := errors.New("quota")
	chain := Chain{&stubFetcher{err: boom}, &stubFetcher{detail: &domain.RecipeDetail{}}}
	if _, err := chain.FetchRecipeDetail(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if _, err := (Chain{}).FetchRecipeDetail(context.Background(), "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty chain: expected ErrNotFound, got %v", err)
	}
}

func TestMergedCatalog(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	a := stubCatalog{list: []domain.RecipeSummary{{Name: "Mapo Tofu"}, {Name: "Char Siu", Category: "Cantonese"}}}
	b := stubCatalog{list: []domain.RecipeSummary{{Name: "mapo tofu"}, {Name: "Beef Noodle Soup", Category: "Taiwanese"}}}
	broken := stubCatalog{err: errors.New("offline")}

	m := NewMerged(log, a, broken, b)
	list, err := m.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 unique recipes, got %d", len(list))
	}

	found, err := m.Search(context.Background(), "taiwan")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Name != "Beef Noodle Soup" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	if _, err := NewMerged(log, broken).List(context.Background()); err == nil {
		t.Fatal("expected error when every catalog fails")
	}
}

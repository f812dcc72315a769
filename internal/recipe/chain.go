package recipe

import (
	"context"
	"errors"
	"strings"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

// Chain asks each fetcher in turn and returns the first answer that is
// not ErrNotFound. House recipes go first so they never hit the network.
type Chain []domain.DetailFetcher

var _ domain.DetailFetcher = Chain(nil)

func (c Chain) FetchRecipeDetail(ctx context.Context, name string) (*domain.RecipeDetail, error) {
	for _, f := range c {
		d, err := f.FetchRecipeDetail(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return d, err
	}
	return nil, domain.ErrNotFound
}

// Merged lists several catalogs as one. Entries with the same name keep
// the first occurrence. A failing catalog is skipped unless all fail.
type Merged struct {
	catalogs []domain.Catalog
	log      *logger.Logger
}

var _ domain.Catalog = (*Merged)(nil)

func NewMerged(log *logger.Logger, catalogs ...domain.Catalog) *Merged {
	return &Merged{catalogs: catalogs, log: log}
}

func (m *Merged) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	var (
		out     []domain.RecipeSummary
		seen    = make(map[string]bool)
		lastErr error
		ok      int
	)
	for _, c := range m.catalogs {
		list, err := c.List(ctx)
		if err != nil {
			m.log.Warn("catalog unavailable: %v", err)
			lastErr = err
			continue
		}
		ok++
		for _, r := range list {
			key := strings.ToLower(r.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	if ok == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (m *Merged) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	all, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

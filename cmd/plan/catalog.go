package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	engine "github.com/FACorreiaa/go-travel-planner/internal/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// catalogFile is the on-disk place catalog for a single city.
type catalogFile struct {
	City   string          `yaml:"city"`
	Center *types.Location `yaml:"center"`
	Places []types.Place   `yaml:"places"`
}

func loadCatalog(path string) (*catalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var c catalogFile
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	for i, p := range c.Places {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("catalog %s: place %d needs an id and a name", path, i+1)
		}
	}
	return &c, nil
}

var _ places.Repository = (*fileRepository)(nil)

// fileRepository answers place searches from a loaded catalog file,
// ordered the way the database query orders them.
type fileRepository struct {
	catalog *catalogFile
}

func (r *fileRepository) Search(ctx context.Context, q places.SearchQuery) ([]types.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.catalog.City != "" && !strings.EqualFold(r.catalog.City, places.CityName(q.Destination)) {
		return []types.Place{}, nil
	}

	name := strings.ToLower(q.Name)
	out := []types.Place{}
	for _, p := range r.catalog.Places {
		if r.catalog.Center != nil && q.RadiusKm > 0 && engine.HaversineKm(*r.catalog.Center, p.Location) > q.RadiusKm {
			continue
		}
		if slices.ContainsFunc(q.Tags, p.HasType) || (name != "" && strings.Contains(strings.ToLower(p.Name), name)) {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b types.Place) int {
		return cmp.Or(
			cmp.Compare(b.RatingValue(), a.RatingValue()),
			cmp.Compare(b.RatingCount, a.RatingCount),
			cmp.Compare(a.ID, b.ID),
		)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

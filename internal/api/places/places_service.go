package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var interestTags = map[types.Interest][]string{
	types.InterestCulture:    {"museum", "art_gallery", "library"},
	types.InterestFood:       {"restaurant", "cafe", "bakery"},
	types.InterestAdventure:  {"park", "amusement_park"},
	types.InterestNature:     {"park", "natural_feature"},
	types.InterestShopping:   {"shopping_mall", "store"},
	types.InterestHistory:    {"museum", "historical_place"},
	types.InterestNightlife:  {"bar", "night_club"},
	types.InterestRelaxation: {"spa", "park"},
}

// TagsFor returns the catalog tags searched for an interest.
func TagsFor(i types.Interest) []string {
	return interestTags[i]
}

var _ Catalog = (*CatalogImpl)(nil)

// Catalog finds candidate places for a destination.
type Catalog interface {
	SearchByInterest(ctx context.Context, interest types.Interest, destination string, radiusKm float64, limit int) ([]types.Place, error)
	Search(ctx context.Context, query, destination string, radiusKm float64, limit int) ([]types.Place, error)
}

type CatalogImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewCatalog(repo Repository, ttl time.Duration, logger *slog.Logger) *CatalogImpl {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CatalogImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// SearchByInterest runs one tag search per interest and keeps the first
// occurrence of every place.
func (c *CatalogImpl) SearchByInterest(ctx context.Context, interest types.Interest, destination string, radiusKm float64, limit int) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlaceCatalog").Start(ctx, "SearchByInterest", trace.WithAttributes(
		attribute.String("interest", string(interest)),
		attribute.String("destination", destination),
	))
	defer span.End()

	tags := TagsFor(interest)
	if len(tags) == 0 {
		return nil, fmt.Errorf("no catalog tags for interest %q: %w", interest, types.ErrValidation)
	}

	key := cacheKey("interest", string(interest), destination, radiusKm, limit)
	if cached, found := c.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.Place), nil
	}

	var out []types.Place
	seen := make(map[string]bool)
	for _, tag := range tags {
		found, err := c.repo.Search(ctx, SearchQuery{
			Destination: destination,
			Tags:        []string{tag},
			RadiusKm:    radiusKm,
			Limit:       limit,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return nil, fmt.Errorf("searching %s places: %w", tag, err)
		}
		for _, p := range found {
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	c.cache.Set(key, out, cache.DefaultExpiration)
	c.logger.DebugContext(ctx, "Interest search complete",
		slog.String("interest", string(interest)), slog.Int("count", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// Search looks a named stop up by free text.
func (c *CatalogImpl) Search(ctx context.Context, query, destination string, radiusKm float64, limit int) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlaceCatalog").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query", query),
		attribute.String("destination", destination),
	))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	key := cacheKey("text", strings.ToLower(query), destination, radiusKm, limit)
	if cached, found := c.cache.Get(key); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.Place), nil
	}

	out, err := c.repo.Search(ctx, SearchQuery{
		Destination: destination,
		Name:        query,
		RadiusKm:    radiusKm,
		Limit:       limit,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	c.cache.Set(key, out, cache.DefaultExpiration)
	span.SetStatus(codes.Ok, "")
	return out, nil
}

func cacheKey(kind, term, destination string, radiusKm float64, limit int) string {
	return fmt.Sprintf("%s:%s:%s:%.1f:%d", kind, term, strings.ToLower(CityName(destination)), radiusKm, limit)
}

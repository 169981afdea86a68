package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// DB is the subset of pgxpool.Pool the repositories use.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*RepositoryImpl)(nil)

// SearchQuery selects places around a destination's city centre. A place
// matches when it carries any of Tags or its name contains Name.
type SearchQuery struct {
	Destination string
	Tags        []string
	Name        string
	RadiusKm    float64
	Limit       int
}

type Repository interface {
	Search(ctx context.Context, q SearchQuery) ([]types.Place, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

const searchPlacesQuery = `
        SELECT
            p.id, p.name, p.address,
            ST_Y(p.location) AS lat, ST_X(p.location) AS lng,
            p.rating, p.rating_count, p.types, p.price_level
        FROM places p
        JOIN cities c ON c.id = p.city_id
        WHERE lower(c.name) = lower($1)
          AND ST_DWithin(p.location::geography, c.center::geography, $2 * 1000)
          AND (p.types && $3::text[] OR ($4 <> '' AND p.name ILIKE '%' || $4 || '%'))
        ORDER BY p.rating DESC NULLS LAST, p.rating_count DESC, p.id
        LIMIT $5
    `

func (r *RepositoryImpl) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlacesRepository").Start(ctx, "Search", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("destination", q.Destination),
		attribute.StringSlice("tags", q.Tags),
		attribute.String("name", q.Name),
	))
	defer span.End()

	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}

	start := time.Now()
	rows, err := r.db.Query(ctx, searchPlacesQuery, CityName(q.Destination), q.RadiusKm, tags, q.Name, q.Limit)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(),
		otelmetric.WithAttributes(attribute.String("query", "places.search")))
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("query", "places.search")))
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var out []types.Place
	for rows.Next() {
		var (
			p          types.Place
			priceLevel *int
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Location.Lat, &p.Location.Lng,
			&p.Rating, &p.RatingCount, &p.Types, &priceLevel); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		p.PriceLevel = priceLevel
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}

	r.logger.DebugContext(ctx, "Places found", slog.Int("count", len(out)), slog.String("destination", q.Destination))
	span.SetAttributes(attribute.Int("places.count", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// CityName reduces "Pune, Maharashtra, India" to "Pune".
func CityName(destination string) string {
	name, _, _ := strings.Cut(destination, ",")
	return strings.TrimSpace(name)
}

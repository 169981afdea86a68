package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	SaveItinerary(ctx context.Context, it types.SavedItinerary) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.SavedItinerary, int, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     places.DB
}

func NewRepository(db places.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, db: db}
}

func (r *RepositoryImpl) observe(ctx context.Context, query string, start time.Time, err error) {
	attrs := otelmetric.WithAttributes(attribute.String("query", query))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) SaveItinerary(ctx context.Context, it types.SavedItinerary) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("PlannerRepository").Start(ctx, "SaveItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("user.id", it.UserID.String()),
	))
	defer span.End()

	payload, err := json.Marshal(it.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary payload: %w", err)
	}

	query := `
        INSERT INTO saved_itineraries (
            user_id, destination, start_date, end_date, status, total_cost, payload
        ) VALUES ($1, $2, $3::text::date, $4::text::date, $5, $6, $7)
        RETURNING id, created_at
    `
	start := time.Now()
	err = r.db.QueryRow(ctx, query,
		it.UserID, it.Destination, it.StartDate, it.EndDate, string(it.Status), it.TotalCost, payload,
	).Scan(&it.ID, &it.CreatedAt)
	r.observe(ctx, "saved_itineraries.insert", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}

	span.SetAttributes(attribute.String("itinerary.id", it.ID.String()))
	span.SetStatus(codes.Ok, "")
	return &it, nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("PlannerRepository").Start(ctx, "GetItinerary", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	query := `
        SELECT id, user_id, destination, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
               status, total_cost, payload, created_at
        FROM saved_itineraries
        WHERE id = $1 AND user_id = $2
    `
	start := time.Now()
	it, err := scanSaved(r.db.QueryRow(ctx, query, itineraryID, userID))
	r.observe(ctx, "saved_itineraries.get", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %s: %w", itineraryID, types.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return it, nil
}

func (r *RepositoryImpl) ListItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]types.SavedItinerary, int, error) {
	ctx, span := otel.Tracer("PlannerRepository").Start(ctx, "ListItineraries", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	var total int
	start := time.Now()
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM saved_itineraries WHERE user_id = $1`, userID).Scan(&total)
	r.observe(ctx, "saved_itineraries.count", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	query := `
        SELECT id, user_id, destination, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
               status, total_cost, payload, created_at
        FROM saved_itineraries
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	start = time.Now()
	rows, err := r.db.Query(ctx, query, userID, pageSize, (page-1)*pageSize)
	r.observe(ctx, "saved_itineraries.list", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()

	out := []types.SavedItinerary{}
	for rows.Next() {
		it, err := scanSaved(rows)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to scan itinerary row: %w", err)
		}
		out = append(out, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating itinerary rows: %w", err)
	}

	span.SetAttributes(attribute.Int("itineraries.count", len(out)), attribute.Int("total_records", total))
	span.SetStatus(codes.Ok, "")
	return out, total, nil
}

func scanSaved(row pgx.Row) (*types.SavedItinerary, error) {
	var (
		it      types.SavedItinerary
		status  string
		payload []byte
	)
	if err := row.Scan(&it.ID, &it.UserID, &it.Destination, &it.StartDate, &it.EndDate,
		&status, &it.TotalCost, &payload, &it.CreatedAt); err != nil {
		return nil, err
	}
	it.Status = types.ItineraryStatus(status)
	if err := json.Unmarshal(payload, &it.Result); err != nil {
		return nil, fmt.Errorf("decoding itinerary payload: %w", err)
	}
	return &it, nil
}

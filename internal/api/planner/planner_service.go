package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-travel-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-planner/internal/api/advisory"
	"github.com/FACorreiaa/go-travel-planner/internal/api/places"
	engine "github.com/FACorreiaa/go-travel-planner/internal/planner"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const internalErrorMessage = "An internal error occurred while building the itinerary"

// ItineraryBuilder is the engine entry point.
type ItineraryBuilder interface {
	Build(ctx context.Context, prefs types.TravelPreferences, places []types.Place, enriched map[string]bool) (*types.Itinerary, error)
}

// Limits bound candidate gathering.
type Limits struct {
	PerInterest       int
	InterestPool      int
	PerMustVisit      int
	MaxCandidates     int
	InterestRadiusKm  float64
	MustVisitRadiusKm float64
	EnrichmentTimeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		PerInterest:       15,
		InterestPool:      60,
		PerMustVisit:      5,
		MaxCandidates:     80,
		InterestRadiusKm:  15,
		MustVisitRadiusKm: 25,
		EnrichmentTimeout: 20 * time.Second,
	}
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GenerateItinerary(ctx context.Context, prefs types.TravelPreferences) (*types.ItineraryResult, error)
	SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedItinerariesResponse, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	repo     Repository
	catalog  places.Catalog
	advisory advisory.Service
	builder  ItineraryBuilder
	limits   Limits
	metrics  *metrics.AppMetrics
	now      func() time.Time
}

// ServiceOption customises a ServiceImpl.
type ServiceOption func(*ServiceImpl)

// WithClock sets the clock used to reject past start dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ServiceImpl) { s.now = now }
}

func NewServiceImpl(repo Repository, catalog places.Catalog, adv advisory.Service, builder ItineraryBuilder,
	limits Limits, m *metrics.AppMetrics, logger *slog.Logger, opts ...ServiceOption) *ServiceImpl {
	if m == nil {
		m = metrics.Get()
	}
	s := &ServiceImpl{
		logger:   logger,
		repo:     repo,
		catalog:  catalog,
		advisory: adv,
		builder:  builder,
		limits:   limits,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateItinerary validates prefs, gathers candidates, builds the
// itinerary and attaches advisory tips. A ValidationError is returned
// before any other work. Internal faults become an error-status result.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, prefs types.TravelPreferences) (result *types.ItineraryResult, err error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("destination", prefs.Destination),
		attribute.Int("days", prefs.NumDays()),
		attribute.String("pace", string(prefs.Pace)),
	))
	defer span.End()
	l := s.logger.With(slog.String("destination", prefs.Destination))

	if err := prefs.Validate(s.now()); err != nil {
		span.SetStatus(codes.Error, "invalid preferences")
		return nil, err
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if wp, ok := r.(*workerPanic); ok {
				r, stack = wp.value, wp.stack
			}
			l.ErrorContext(ctx, "Itinerary build panicked",
				slog.Any("panic", r), slog.String("stack", string(stack)))
			span.SetStatus(codes.Error, "panic")
			result, err = types.FailedResult(types.StatusError, prefs.Destination, internalErrorMessage), nil
		}
		if result != nil {
			s.metrics.ItinerariesBuiltTotal.Add(ctx, 1,
				otelmetric.WithAttributes(attribute.String("status", string(result.Status))))
			s.metrics.BuildDurationSeconds.Record(ctx, time.Since(start).Seconds())
		}
	}()

	candidates, err := s.gatherCandidates(ctx, prefs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "candidate search failed")
		l.ErrorContext(ctx, "Candidate search failed", slog.Any("error", err))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return types.FailedResult(types.StatusCancelled, prefs.Destination, "Request cancelled"), err
		}
		return types.FailedResult(types.StatusError, prefs.Destination, "Place catalog unavailable"), err
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))

	enriched := make(map[string]bool)
	if s.advisory != nil {
		for _, p := range candidates {
			if s.advisory.HasContent(p.Name) {
				enriched[p.ID] = true
			}
		}
	}

	it, buildErr := s.builder.Build(ctx, prefs, candidates, enriched)
	if it == nil {
		if buildErr != nil {
			span.RecordError(buildErr)
		}
		return types.FailedResult(types.StatusError, prefs.Destination, internalErrorMessage), buildErr
	}
	if buildErr == nil && len(it.Days) > 0 {
		s.enrich(ctx, it, prefs)
	}

	items := it.Items()
	s.metrics.ScheduledItems.Record(ctx, int64(len(items)))
	s.metrics.TravelFallbacksTotal.Add(ctx, int64(it.Metrics.TravelFallbacks))

	span.SetAttributes(attribute.String("status", string(it.Status)), attribute.Int("items", len(items)))
	if buildErr != nil {
		span.RecordError(buildErr)
		return types.NewItineraryResult(it, "Request cancelled before the itinerary was complete"), buildErr
	}
	span.SetStatus(codes.Ok, "")
	return types.NewItineraryResult(it, statusMessage(it)), nil
}

func statusMessage(it *types.Itinerary) string {
	switch it.Status {
	case types.StatusSuccess:
		return "Itinerary generated"
	case types.StatusInfeasible:
		if len(it.Validation.Reasons) > 0 {
			return "No itinerary could be built: " + it.Validation.Reasons[0]
		}
		return "Itinerary generated, but some constraints could not be met"
	case types.StatusNoCandidates:
		return "No places found for this destination"
	default:
		return ""
	}
}

// gatherCandidates searches every interest concurrently, keeps interest
// order, then appends must-visit lookups. Individual search failures are
// tolerated as long as one search succeeds.
func (s *ServiceImpl) gatherCandidates(ctx context.Context, prefs types.TravelPreferences) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "gatherCandidates")
	defer span.End()

	byInterest := make([][]types.Place, len(prefs.Interests))
	byStop := make([][]types.Place, len(prefs.MustVisit))

	var (
		mu       sync.Mutex
		failures []error
		searches = len(prefs.Interests) + len(prefs.MustVisit)
	)
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, interest := range prefs.Interests {
		g.Go(guard(func() error {
			found, err := s.catalog.SearchByInterest(gctx, interest, prefs.Destination, s.limits.InterestRadiusKm, s.limits.PerInterest)
			if err != nil {
				s.logger.WarnContext(gctx, "Interest search failed",
					slog.String("interest", string(interest)), slog.Any("error", err))
				fail(err)
				return nil
			}
			byInterest[i] = found
			return nil
		}))
	}
	for i, name := range prefs.MustVisit {
		g.Go(guard(func() error {
			found, err := s.catalog.Search(gctx, name, prefs.Destination, s.limits.MustVisitRadiusKm, s.limits.PerMustVisit)
			if err != nil {
				s.logger.WarnContext(gctx, "Must-visit search failed",
					slog.String("name", name), slog.Any("error", err))
				fail(err)
				return nil
			}
			byStop[i] = found
			return nil
		}))
	}
	rethrow(g.Wait())

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if searches > 0 && len(failures) == searches {
		return nil, fmt.Errorf("all %d place searches failed: %w", searches, errors.Join(failures...))
	}

	var out []types.Place
	seen := make(map[string]bool)
	add := func(list []types.Place, limit int) {
		for _, p := range list {
			if len(out) >= limit {
				return
			}
			if !seen[p.ID] {
				seen[p.ID] = true
				out = append(out, p)
			}
		}
	}
	for _, list := range byInterest {
		add(list, s.limits.InterestPool)
	}
	for _, list := range byStop {
		add(list, s.limits.MaxCandidates)
	}
	span.SetAttributes(attribute.Int("candidates", len(out)))
	return out, nil
}

// enrich attaches advisory tips to every scheduled item. Failures leave
// the item without tips.
func (s *ServiceImpl) enrich(ctx context.Context, it *types.Itinerary, prefs types.TravelPreferences) {
	if s.advisory == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.limits.EnrichmentTimeout)
	defer cancel()

	tier := engine.NewBudgetModel().PlanFor(prefs).Tier

	var g errgroup.Group
	g.SetLimit(4)
	for d := range it.Days {
		for i := range it.Days[d].Items {
			item := &it.Days[d].Items[i]
			g.Go(guard(func() error {
				if ctx.Err() != nil {
					return nil
				}
				item.Tips = s.advisory.TipsFor(ctx, advisory.TipRequest{
					PlaceName:     item.Name,
					Category:      item.Category,
					VisitTime:     item.StartTime,
					DurationHours: item.DurationHours,
					City:          places.CityName(prefs.Destination),
					BudgetTier:    tier,
					Pace:          prefs.Pace,
				})
				return nil
			}))
		}
	}
	rethrow(g.Wait())
}

// workerPanic carries a panic out of an errgroup worker so it reaches the
// recover in GenerateItinerary.
type workerPanic struct {
	value any
	stack []byte
}

func (p *workerPanic) Error() string { return fmt.Sprintf("worker panicked: %v", p.value) }

// guard turns a panic in fn into a *workerPanic error.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &workerPanic{value: r, stack: debug.Stack()}
			}
		}()
		return fn()
	}
}

// rethrow re-raises a worker panic on the calling goroutine. Workers
// report every other failure themselves and return nil.
func rethrow(err error) {
	var wp *workerPanic
	if errors.As(err, &wp) {
		panic(wp)
	}
}

func (s *ServiceImpl) SaveItinerary(ctx context.Context, userID uuid.UUID, req types.SaveItineraryRequest) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	var total float64
	if req.Itinerary.OverallSummary != nil {
		total = req.Itinerary.OverallSummary.TotalCost
	}
	saved, err := s.repo.SaveItinerary(ctx, types.SavedItinerary{
		UserID:      userID,
		Destination: req.Itinerary.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      req.Itinerary.Status,
		TotalCost:   total,
		Result:      req.Itinerary,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary saved")
	return saved, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, itineraryID uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "GetItinerary")
	defer span.End()

	it, err := s.repo.GetItinerary(ctx, userID, itineraryID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.logger.ErrorContext(ctx, "Repository failed to get itinerary", slog.Any("error", err))
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary retrieved")
	return it, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.PaginatedItinerariesResponse, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	))
	defer span.End()

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	list, total, err := s.repo.ListItineraries(ctx, userID, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	span.SetStatus(codes.Ok, "Itineraries retrieved")
	return &types.PaginatedItinerariesResponse{
		Itineraries:  list,
		TotalRecords: total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

package planner

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Assembler builds complete multi-day itineraries. It holds no per-build
// state, so one Assembler can serve concurrent builds.
type Assembler struct {
	oracle        TravelTimeOracle
	logger        *slog.Logger
	budgetOpts    []BudgetOption
	seed          *uint64
	lookupTimeout time.Duration
	tolerance     float64
}

type AssemblerOption func(*Assembler)

// WithBudgetOptions configures the budget model created for every build.
func WithBudgetOptions(opts ...BudgetOption) AssemblerOption {
	return func(a *Assembler) { a.budgetOpts = append(a.budgetOpts, opts...) }
}

// WithCostSeed makes cost and duration estimates seeded draws instead of
// midpoints. Equal seeds give equal itineraries.
func WithCostSeed(seed uint64) AssemblerOption {
	return func(a *Assembler) { a.seed = &seed }
}

func WithTravelTimeout(d time.Duration) AssemblerOption {
	return func(a *Assembler) { a.lookupTimeout = d }
}

func WithBudgetTolerance(t float64) AssemblerOption {
	return func(a *Assembler) { a.tolerance = t }
}

func NewAssembler(oracle TravelTimeOracle, logger *slog.Logger, opts ...AssemblerOption) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assembler{
		oracle:        oracle,
		logger:        logger,
		lookupTimeout: defaultLookupTimeout,
		tolerance:     DefaultTolerance,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build runs the whole pipeline for one trip. enriched holds the ids of
// places with advisory content and may be nil.
//
// A cancelled build returns the days completed so far, with status
// cancelled, together with the context error.
func (a *Assembler) Build(ctx context.Context, prefs types.TravelPreferences, places []types.Place, enriched map[string]bool) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryAssembler").Start(ctx, "Build", trace.WithAttributes(
		attribute.String("destination", prefs.Destination),
		attribute.Int("candidates", len(places)),
	))
	defer span.End()

	opts := a.budgetOpts
	var durationRand *rand.Rand
	if a.seed != nil {
		opts = append(append([]BudgetOption{}, opts...), WithSeed(*a.seed))
		durationRand = newRand(*a.seed + 1)
	}
	budget := NewBudgetModel(opts...)
	plan := budget.PlanFor(prefs)
	pace := PaceFor(prefs.Pace)
	l := a.logger.With(slog.String("destination", prefs.Destination), slog.Int("days", plan.Days))

	it := &types.Itinerary{
		Destination: prefs.Destination,
		StartDate:   types.FormatDate(prefs.StartDate),
		EndDate:     types.FormatDate(prefs.EndDate),
		NumDays:     plan.Days,
		Days:        []types.DaySchedule{},
	}

	candidates := uniquePlaces(places)
	if len(candidates) == 0 {
		it.Status = types.StatusNoCandidates
		span.SetAttributes(attribute.String("status", string(it.Status)))
		l.InfoContext(ctx, "No candidate places for itinerary")
		return it, nil
	}

	factory := activityFactory{budget: budget, tier: plan.Tier, pace: pace, rng: durationRand}
	activities := make([]Activity, 0, len(candidates))
	for _, p := range candidates {
		activities = append(activities, factory.newActivity(p))
	}
	ranked := NewActivityScorer(prefs, budget, enriched).rank(activities)

	mandatory, cultural, regular := partition(ranked)
	quota := max(1, mandatory.Len()/plan.Days)

	scheduler := NewDayScheduler(pace, a.oracle, a.logger,
		WithLookupTimeout(a.lookupTimeout), WithTolerance(a.tolerance))

	ledger := NewLedger()
	var buildErr error
	for day := 1; day <= plan.Days; day++ {
		n := quota
		if day == plan.Days {
			n = mandatory.Len()
		}
		allotment := mandatory.Take(n)

		dayCtx, daySpan := otel.Tracer("ItineraryAssembler").Start(ctx, "BuildDay", trace.WithAttributes(
			attribute.Int("day", day),
			attribute.Int("mandatory", len(allotment)),
		))
		schedule, next, err := scheduler.BuildDay(dayCtx, DayRequest{
			Day:         day,
			Date:        prefs.DayDate(day),
			DailyBudget: plan.Daily,
			Mandatory:   allotment,
			Cultural:    cultural,
			Regular:     regular,
		}, ledger)
		if err != nil {
			daySpan.RecordError(err)
			daySpan.SetStatus(codes.Error, "day build aborted")
			daySpan.End()
			buildErr = fmt.Errorf("building day %d: %w", day, err)
			break
		}
		daySpan.SetAttributes(attribute.Int("items", len(schedule.Items)))
		daySpan.End()

		var unused []Activity
		for _, act := range allotment {
			if !next.Contains(act.Place.ID) {
				unused = append(unused, act)
			}
		}
		mandatory.Return(unused)

		for i := range schedule.Items {
			schedule.Items[i].Sequence = i + 1
		}
		it.Days = append(it.Days, schedule)
		ledger = next
	}

	items := it.Items()
	for _, d := range it.Days {
		it.TotalCost += d.Summary.TotalCost
	}
	it.Validation = DefaultRegistry(prefs, pace, plan.Total).CheckAll(items)
	if len(items) == 0 && buildErr == nil {
		it.Validation.Reasons = append(it.Validation.Reasons, emptyScheduleReason(ranked, plan.Daily*a.tolerance))
	}
	it.Summary = summarize(it, items, plan, pace.Pace)
	it.Metrics = optimizationMetrics(ranked, items, prefs, it.Validation)

	switch {
	case buildErr != nil:
		it.Status = types.StatusCancelled
		span.RecordError(buildErr)
		span.SetStatus(codes.Error, "build cancelled")
		l.WarnContext(ctx, "Itinerary build cancelled",
			slog.Int("completed_days", len(it.Days)), slog.Any("error", buildErr))
		return it, buildErr
	case len(items) == 0 || !it.Validation.HardConstraintsSatisfied:
		it.Status = types.StatusInfeasible
	default:
		it.Status = types.StatusSuccess
	}

	span.SetAttributes(
		attribute.String("status", string(it.Status)),
		attribute.Int("items", len(items)),
		attribute.Float64("penalty", it.Validation.TotalPenalty),
	)
	span.SetStatus(codes.Ok, "")
	l.InfoContext(ctx, "Itinerary built",
		slog.String("status", string(it.Status)),
		slog.Int("items", len(items)),
		slog.Float64("total_cost", it.TotalCost),
		slog.Float64("penalty", it.Validation.TotalPenalty))
	return it, nil
}

// emptyScheduleReason explains why not a single stop was placed.
func emptyScheduleReason(ranked []Activity, ceiling float64) string {
	cheapest := math.Inf(1)
	for _, act := range ranked {
		cheapest = math.Min(cheapest, act.Cost)
	}
	if cheapest > ceiling {
		return fmt.Sprintf("nothing could be scheduled within the daily ceiling of %.0f; the cheapest stop costs %.0f", ceiling, cheapest)
	}
	return "no candidate fit the day's opening hours and meal times"
}

// partition splits ranked activities by test order: mandatory, then
// cultural, then everything else.
func partition(ranked []Activity) (mandatory, cultural, regular *Pool) {
	mandatory, cultural, regular = NewPool(), NewPool(), NewPool()
	for _, a := range ranked {
		switch {
		case a.MustVisit:
			mandatory.items = append(mandatory.items, a)
		case a.Cultural:
			cultural.items = append(cultural.items, a)
		default:
			regular.items = append(regular.items, a)
		}
	}
	return mandatory, cultural, regular
}

func uniquePlaces(places []types.Place) []types.Place {
	seen := make(map[string]struct{}, len(places))
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func summarize(it *types.Itinerary, items []types.ScheduledItem, plan Plan, pace types.Pace) types.OverallSummary {
	s := types.OverallSummary{
		TotalDays:            it.NumDays,
		TotalItems:           len(items),
		TotalCost:            it.TotalCost,
		TotalBudget:          plan.Total,
		BudgetRemaining:      plan.Total - it.TotalCost,
		CategoryDistribution: make(map[string]int),
		Pace:                 pace,
	}
	for _, item := range items {
		if item.IsMeal() {
			s.TotalMeals++
		} else {
			s.TotalActivities++
		}
		s.CategoryDistribution[item.Category]++
		s.TotalTravelKm += item.Travel.DistanceKm
	}
	s.TotalTravelKm = round2(s.TotalTravelKm)
	if plan.Total > 0 {
		s.BudgetUsedPercentage = math.Round(it.TotalCost/plan.Total*1000) / 10
	}
	return s
}

func optimizationMetrics(ranked []Activity, items []types.ScheduledItem, prefs types.TravelPreferences, report types.ValidationReport) types.OptimizationMetrics {
	m := types.OptimizationMetrics{CandidatesConsidered: len(ranked), MandatoryCoverage: 100}

	scores := make(map[string]float64, len(ranked))
	for _, a := range ranked {
		scores[a.Place.ID] = a.Score
	}
	total := 0.0
	for _, item := range items {
		total += scores[item.PlaceID]
		if item.Travel.Estimated && item.Travel.Mode != types.ModeMealBreak {
			m.TravelFallbacks++
		}
	}
	if len(items) > 0 {
		m.AverageScore = math.Round(total/float64(len(items))*10) / 10
	}
	if len(ranked) > 0 {
		m.CandidateUtilisation = math.Round(float64(len(items))/float64(len(ranked))*1000) / 10
	}
	if n := len(normalizeNames(prefs.MustVisit)); n > 0 {
		m.MandatoryCoverage = math.Round(float64(n-len(report.MissingMustVisit))/float64(n)*1000) / 10
	}
	return m
}

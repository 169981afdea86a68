package planner

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	// DefaultTolerance is how far above the daily budget a day may run.
	DefaultTolerance = 1.3

	transitionBuffer = 30 * time.Minute
	subcategoryCap   = 2
)

var categoryCaps = map[string]int{
	CategoryMuseum:     1,
	CategoryPark:       2,
	CategoryShopping:   2,
	CategoryTemple:     2,
	CategoryHistorical: 2,
}

var mealBaseHours = map[types.MealType]float64{
	types.MealBreakfast: 0.75,
	types.MealLunch:     1.0,
	types.MealDinner:    1.25,
}

// DayRequest is everything one day build needs besides the ledger.
type DayRequest struct {
	Day         int
	Date        time.Time
	DailyBudget float64
	// Mandatory is this day's allotment of mandatory stops.
	Mandatory []Activity
	Cultural  *Pool
	Regular   *Pool
}

// DayScheduler greedily builds a single day:
// breakfast, morning fill, lunch, afternoon fill, dinner.
type DayScheduler struct {
	pace      PaceConfig
	tolerance float64
	travel    *travelResolver
	logger    *slog.Logger
}

type SchedulerOption func(*DayScheduler)

// WithLookupTimeout bounds every travel-time lookup.
func WithLookupTimeout(d time.Duration) SchedulerOption {
	return func(s *DayScheduler) { s.travel.timeout = d }
}

func WithTolerance(t float64) SchedulerOption {
	return func(s *DayScheduler) { s.tolerance = t }
}

func NewDayScheduler(pace PaceConfig, oracle TravelTimeOracle, logger *slog.Logger, opts ...SchedulerOption) *DayScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DayScheduler{
		pace:      pace,
		tolerance: DefaultTolerance,
		travel:    &travelResolver{oracle: oracle, timeout: defaultLookupTimeout, logger: logger},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dayState is the running state of one day build. It never escapes BuildDay.
type dayState struct {
	req           DayRequest
	ledger        Ledger
	items         []types.ScheduledItem
	now           time.Time
	loc           *types.Location
	spent         float64
	activities    int
	categoryCount map[string]int
	subCount      map[string]int
	attempted     int
	skipped       int
}

// BuildDay builds one day and returns it with the ledger extended by every
// place it used. On cancellation the input ledger is returned untouched.
func (s *DayScheduler) BuildDay(ctx context.Context, req DayRequest, ledger Ledger) (types.DaySchedule, Ledger, error) {
	st := &dayState{
		req:           req,
		ledger:        ledger.Clone(),
		items:         []types.ScheduledItem{},
		now:           s.pace.DayStart.On(req.Date),
		categoryCount: make(map[string]int),
		subCount:      make(map[string]int),
	}

	candidates := make([]Activity, 0, len(req.Mandatory)+poolLen(req.Cultural)+poolLen(req.Regular))
	candidates = append(candidates, req.Mandatory...)
	if req.Cultural != nil {
		candidates = append(candidates, req.Cultural.Items()...)
	}
	if req.Regular != nil {
		candidates = append(candidates, req.Regular.Items()...)
	}

	phases := []func(context.Context, *dayState, []Activity) error{
		s.meal(types.MealBreakfast),
		s.fill(s.pace.Lunch, s.pace.MorningSlots()),
		s.meal(types.MealLunch),
		s.fill(s.pace.Dinner, s.pace.TargetActivities),
		s.meal(types.MealDinner),
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return types.DaySchedule{}, ledger, err
		}
		if err := phase(ctx, st, candidates); err != nil {
			return types.DaySchedule{}, ledger, err
		}
	}

	day := types.DaySchedule{
		Day:     req.Day,
		Date:    types.FormatDate(req.Date),
		Items:   st.items,
		Summary: summarizeDay(st.items, st.attempted, st.skipped),
	}
	s.logger.DebugContext(ctx, "Day built",
		slog.Int("day", req.Day),
		slog.Int("activities", st.activities),
		slog.Int("meals", st.attempted-st.skipped),
		slog.Float64("spent", st.spent))
	return day, st.ledger, nil
}

func poolLen(p *Pool) int {
	if p == nil {
		return 0
	}
	return p.Len()
}

func (s *DayScheduler) ceiling(st *dayState) float64 {
	return st.req.DailyBudget * s.tolerance
}

// fill admits activities in candidate order until target activities are
// scheduled for the day or the candidates run out.
func (s *DayScheduler) fill(boundary ClockTime, target int) func(context.Context, *dayState, []Activity) error {
	return func(ctx context.Context, st *dayState, candidates []Activity) error {
		limit := boundary.On(st.req.Date)
		for _, a := range candidates {
			if st.activities >= target {
				return nil
			}
			if !s.admissible(st, a) {
				continue
			}
			duration := hoursToDuration(a.DurationHours)
			if st.now.Add(duration + transitionBuffer).After(limit) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			travel := types.TravelInfo{Mode: types.ModeStart}
			if st.loc != nil {
				travel = s.travel.resolve(ctx, *st.loc, a.Place.Location)
			}
			start := st.now.Add(time.Duration(travel.DurationMinutes) * time.Minute)
			if start.Add(duration + transitionBuffer).After(limit) {
				continue
			}

			s.place(st, a, types.ItemActivity, "", start, a.DurationHours, travel)
			st.activities++
			st.categoryCount[a.Category]++
			if a.Subcategory != "" {
				st.subCount[a.Subcategory]++
			}
		}
		return nil
	}
}

func (s *DayScheduler) admissible(st *dayState, a Activity) bool {
	if st.ledger.Contains(a.Place.ID) || a.IsMeal() {
		return false
	}
	if st.spent+a.Cost > s.ceiling(st) {
		return false
	}
	if n := len(st.items); n > 0 && st.items[n-1].Category == a.Category && !varietyExempt[a.Category] {
		return false
	}
	if limit, ok := categoryCaps[a.Category]; ok && st.categoryCount[a.Category] >= limit {
		return false
	}
	if a.Subcategory != "" && st.subCount[a.Subcategory] >= subcategoryCap {
		return false
	}
	return true
}

// meal places the best unused restaurant at the meal time, or records a skip.
func (s *DayScheduler) meal(m types.MealType) func(context.Context, *dayState, []Activity) error {
	return func(_ context.Context, st *dayState, candidates []Activity) error {
		st.attempted++
		mealStart := s.pace.MealTime(m).On(st.req.Date)
		if st.now.After(mealStart) {
			mealStart = st.now
		}

		r, ok := s.pickRestaurant(st, candidates)
		hours := mealBaseHours[m] * s.pace.MealDurationMultiplier
		if !ok || mealStart.Add(hoursToDuration(hours)).After(s.pace.DayEnd.On(st.req.Date)) {
			st.skipped++
			st.now = mealStart
			return nil
		}

		travel := types.TravelInfo{Mode: types.ModeMealBreak}
		if st.loc != nil {
			travel.DistanceKm = round2(HaversineKm(*st.loc, r.Place.Location))
		}
		s.place(st, r, types.ItemMeal, m, mealStart, hours, travel)
		return nil
	}
}

// pickRestaurant prefers mandatory restaurants, then the highest rating.
// Equal ratings keep candidate order.
func (s *DayScheduler) pickRestaurant(st *dayState, candidates []Activity) (Activity, bool) {
	var eligible []Activity
	for _, a := range candidates {
		if !a.IsMeal() || st.ledger.Contains(a.Place.ID) {
			continue
		}
		if st.spent+a.Cost > s.ceiling(st) {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		return Activity{}, false
	}
	slices.SortStableFunc(eligible, func(a, b Activity) int {
		if a.MustVisit != b.MustVisit {
			if a.MustVisit {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Place.RatingValue(), a.Place.RatingValue())
	})
	return eligible[0], true
}

func (s *DayScheduler) place(st *dayState, a Activity, kind types.ItemKind, m types.MealType, start time.Time, hours float64, travel types.TravelInfo) {
	end := start.Add(hoursToDuration(hours))
	item := types.ScheduledItem{
		Sequence:      len(st.items) + 1,
		Day:           st.req.Day,
		PlaceID:       a.Place.ID,
		Name:          a.Place.Name,
		Kind:          kind,
		MealType:      m,
		Category:      a.Category,
		Subcategory:   a.Subcategory,
		Start:         start,
		End:           end,
		StartTime:     start.Format("15:04"),
		EndTime:       end.Format("15:04"),
		DurationHours: math.Round(hours*100) / 100,
		Location:      a.Place.Location,
		Address:       a.Place.Address,
		Cost:          a.Cost,
		Rating:        a.Place.Rating,
		Travel:        travel,
		MustVisit:     a.MustVisit,
		Score:         math.Round(a.Score*10) / 10,
	}
	st.items = append(st.items, item)
	st.ledger.mark(a.Place.ID)
	st.spent += a.Cost
	st.now = end
	loc := a.Place.Location
	st.loc = &loc
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*60)) * time.Minute
}

func summarizeDay(items []types.ScheduledItem, attempted, skipped int) types.DaySummary {
	s := types.DaySummary{
		TotalItems:     len(items),
		MealsAttempted: attempted,
		MealsSkipped:   skipped,
	}
	for _, it := range items {
		s.TotalCost += it.Cost
		s.TravelKm += it.Travel.DistanceKm
		if it.IsMeal() {
			s.MealsCount++
			s.MealsCost += it.Cost
		} else {
			s.ActivitiesCount++
			s.ActivitiesCost += it.Cost
		}
	}
	s.TravelKm = round2(s.TravelKm)
	if len(items) > 0 {
		s.StartTime = items[0].StartTime
		s.EndTime = items[len(items)-1].EndTime
	}
	return s
}

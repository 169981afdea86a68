package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var scheduleDate = time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)

func activities(pace PaceConfig, places ...types.Place) []Activity {
	f := activityFactory{budget: NewBudgetModel(), tier: types.BudgetMedium, pace: pace}
	out := make([]Activity, 0, len(places))
	for _, p := range places {
		out = append(out, f.newActivity(p))
	}
	return out
}

func dayRequest(regular []Activity) DayRequest {
	return DayRequest{
		Day:         1,
		Date:        scheduleDate,
		DailyBudget: 6000,
		Cultural:    NewPool(),
		Regular:     NewPool(regular...),
	}
}

func names(items []types.ScheduledItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.PlaceID)
	}
	return out
}

func TestDayScheduler_VarietySkipsRepeatedCategory(t *testing.T) {
	pace := PaceFor(types.PaceModerate)
	s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)

	parkA := place("p1", "Empress Garden", 4.5, 18.5018, 73.8850, "park")
	parkB := place("p2", "Saras Baug", 4.4, 18.5008, 73.8520, "park")
	shop := place("s1", "Phoenix Marketcity", 4.3, 18.5622, 73.9167, "shopping_mall")

	day, ledger, err := s.BuildDay(context.Background(), dayRequest(activities(pace, parkA, parkB, shop)), NewLedger())
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "s1", "p2"}, names(day.Items))
	assert.Equal(t, "08:00", day.Items[0].StartTime)
	assert.Equal(t, types.ModeStart, day.Items[0].Travel.Mode)
	assert.Equal(t, "09:10", day.Items[1].StartTime)
	assert.Equal(t, "10:40", day.Items[1].EndTime)
	assert.Equal(t, "13:10", day.Items[2].StartTime)
	assert.Equal(t, 3, ledger.Len())

	assert.Equal(t, 3, day.Summary.MealsAttempted)
	assert.Equal(t, 3, day.Summary.MealsSkipped)
	assert.Equal(t, 3, day.Summary.ActivitiesCount)
	for i, it := range day.Items {
		assert.Equal(t, i+1, it.Sequence)
	}
}

func TestDayScheduler_Meals(t *testing.T) {
	pace := PaceFor(types.PaceModerate)
	restaurants := []types.Place{
		place("r1", "Vaishali", 4.5, 18.5205, 73.8415, "restaurant"),
		place("r2", "Shabree", 4.3, 18.5160, 73.8470, "restaurant"),
		place("r4", "Kayani Bakery", 4.6, 18.5190, 73.8790, "restaurant", "cafe"),
	}
	museum := place("m1", "Kelkar Museum", 4.6, 18.5104, 73.8567, "museum")

	t.Run("highest rated restaurant at each meal", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		acts := activities(pace, append(restaurants, museum)...)

		day, _, err := s.BuildDay(context.Background(), dayRequest(acts), NewLedger())
		require.NoError(t, err)
		require.Len(t, day.Items, 4)

		breakfast := day.Items[0]
		assert.Equal(t, "r4", breakfast.PlaceID)
		assert.Equal(t, types.MealBreakfast, breakfast.MealType)
		assert.Equal(t, "08:00", breakfast.StartTime)
		assert.Equal(t, "08:45", breakfast.EndTime)
		assert.Equal(t, types.ModeMealBreak, breakfast.Travel.Mode)

		assert.Equal(t, "m1", day.Items[1].PlaceID)
		assert.Equal(t, "08:55", day.Items[1].StartTime)

		assert.Equal(t, "r1", day.Items[2].PlaceID)
		assert.Equal(t, "13:00", day.Items[2].StartTime)
		assert.Equal(t, "r2", day.Items[3].PlaceID)
		assert.Equal(t, "20:00", day.Items[3].StartTime)
		assert.Equal(t, "21:15", day.Items[3].EndTime)

		assert.Equal(t, 3, day.Summary.MealsCount)
		assert.Zero(t, day.Summary.MealsSkipped)
		assert.Equal(t, "08:00", day.Summary.StartTime)
		assert.Equal(t, "21:15", day.Summary.EndTime)
	})

	t.Run("mandatory restaurant first", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		acts := activities(pace, restaurants...)
		acts[1].MustVisit = true

		day, _, err := s.BuildDay(context.Background(), dayRequest(acts), NewLedger())
		require.NoError(t, err)
		assert.Equal(t, []string{"r2", "r4", "r1"}, names(day.Items))
	})

	t.Run("dinner past day end is skipped", func(t *testing.T) {
		short := pace
		short.DayEnd = Clock(20, 30)
		s := NewDayScheduler(short, &fixedOracle{minutes: 10}, testLogger)

		day, _, err := s.BuildDay(context.Background(), dayRequest(activities(short, restaurants...)), NewLedger())
		require.NoError(t, err)
		assert.Len(t, day.Items, 2)
		assert.Equal(t, 1, day.Summary.MealsSkipped)
		for _, it := range day.Items {
			assert.False(t, it.End.After(short.DayEnd.On(scheduleDate)))
		}
	})
}

func TestDayScheduler_Admission(t *testing.T) {
	pace := PaceFor(types.PaceModerate)

	t.Run("daily budget ceiling", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		req := dayRequest(activities(pace,
			place("r1", "Vaishali", 4.5, 18.52, 73.84, "restaurant"),
			place("m1", "Kelkar Museum", 4.6, 18.51, 73.85, "museum"),
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
		))
		req.DailyBudget = 100

		day, _, err := s.BuildDay(context.Background(), req, NewLedger())
		require.NoError(t, err)
		assert.Equal(t, []string{"p1"}, names(day.Items))
		assert.LessOrEqual(t, day.Summary.TotalCost, 130.0)
	})

	t.Run("one museum per day", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		req := dayRequest(activities(pace,
			place("m1", "Kelkar Museum", 4.6, 18.51, 73.85, "museum"),
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
			place("g1", "Darshan Art Gallery", 4.1, 18.52, 73.84, "art_gallery"),
			place("m2", "Tribal Museum", 4.2, 18.53, 73.87, "museum"),
		))

		day, _, err := s.BuildDay(context.Background(), req, NewLedger())
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "p1"}, names(day.Items))
	})

	t.Run("used places are skipped and ledger is extended", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		req := dayRequest(activities(pace,
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
			place("s1", "Phoenix Marketcity", 4.3, 18.56, 73.91, "shopping_mall"),
		))
		in := NewLedger("p1")

		day, out, err := s.BuildDay(context.Background(), req, in)
		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, names(day.Items))
		assert.True(t, out.Contains("p1"))
		assert.True(t, out.Contains("s1"))
		assert.Equal(t, 1, in.Len(), "input ledger is not modified")
	})

	t.Run("mandatory allotment goes first", func(t *testing.T) {
		s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)
		acts := activities(pace,
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
			place("h1", "Shaniwar Wada", 4.5, 18.52, 73.86, "historical_place"),
		)
		req := dayRequest(acts[:1])
		req.Mandatory = acts[1:]

		day, _, err := s.BuildDay(context.Background(), req, NewLedger())
		require.NoError(t, err)
		assert.Equal(t, []string{"h1", "p1"}, names(day.Items))
	})

	t.Run("subcategory cap", func(t *testing.T) {
		packed := PaceFor(types.PacePacked)
		s := NewDayScheduler(packed, &fixedOracle{minutes: 10}, testLogger)
		req := dayRequest(activities(packed,
			place("z1", "Rajiv Gandhi Zoo", 4.3, 18.45, 73.86, "zoo"),
			place("l1", "Aga Khan Palace", 4.5, 18.55, 73.90, "tourist_attraction"),
			place("z2", "Snake Park", 4.0, 18.46, 73.86, "zoo"),
			place("l2", "Osho Ashram", 4.1, 18.53, 73.88, "tourist_attraction"),
			place("z3", "Peshwe Park Zoo", 3.9, 18.50, 73.85, "zoo"),
			place("l3", "Vishrambaug Wada", 4.2, 18.51, 73.85, "tourist_attraction"),
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
		))

		day, _, err := s.BuildDay(context.Background(), req, NewLedger())
		require.NoError(t, err)
		assert.Equal(t, []string{"z1", "l1", "z2", "l2", "p1"}, names(day.Items))
		assert.Equal(t, 5, day.Summary.ActivitiesCount)
	})

	t.Run("activity crossing lunch is skipped", func(t *testing.T) {
		early := pace
		early.Lunch = Clock(11, 30)
		s := NewDayScheduler(early, &fixedOracle{minutes: 10}, testLogger)
		req := dayRequest(activities(early,
			place("h1", "Shaniwar Wada", 4.5, 18.52, 73.86, "historical_place"),
			place("m1", "Kelkar Museum", 4.6, 18.51, 73.85, "museum"),
			place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"),
		))

		day, _, err := s.BuildDay(context.Background(), req, NewLedger())
		require.NoError(t, err)
		require.Equal(t, []string{"h1", "p1", "m1"}, names(day.Items))

		assert.Equal(t, "09:40", day.Items[1].StartTime)
		assert.Equal(t, "10:40", day.Items[1].EndTime)
		museum := day.Items[2]
		assert.Equal(t, "11:40", museum.StartTime, "museum waits for the afternoon")
		assert.False(t, museum.Start.Before(early.Lunch.On(scheduleDate)))
	})
}

func TestDayScheduler_TravelFallback(t *testing.T) {
	pace := PaceFor(types.PaceModerate)
	acts := activities(pace,
		place("p1", "Empress Garden", 4.3, 18.5018, 73.8850, "park"),
		place("s1", "Phoenix Marketcity", 4.3, 18.5622, 73.9167, "shopping_mall"),
	)

	t.Run("oracle error", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("TravelTime", mock.Anything, acts[0].Place.Location, acts[1].Place.Location, types.ModeTransit).
			Return(nil, errors.New("routing unavailable")).Once()

		s := NewDayScheduler(pace, oracle, testLogger)
		day, _, err := s.BuildDay(context.Background(), dayRequest(acts), NewLedger())
		require.NoError(t, err)
		require.Len(t, day.Items, 2)

		leg := day.Items[1].Travel
		assert.True(t, leg.Estimated)
		assert.Equal(t, types.ModeTransit, leg.Mode)
		assert.InDelta(t, HaversineKm(acts[0].Place.Location, acts[1].Place.Location), leg.DistanceKm, 0.01)
		oracle.AssertExpectations(t)
	})

	t.Run("oracle without answer", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("TravelTime", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()

		s := NewDayScheduler(pace, oracle, testLogger)
		day, _, err := s.BuildDay(context.Background(), dayRequest(acts), NewLedger())
		require.NoError(t, err)
		assert.True(t, day.Items[1].Travel.Estimated)
		oracle.AssertExpectations(t)
	})

	t.Run("slow oracle times out", func(t *testing.T) {
		s := NewDayScheduler(pace, blockingOracle{}, testLogger, WithLookupTimeout(20*time.Millisecond))

		started := time.Now()
		day, _, err := s.BuildDay(context.Background(), dayRequest(acts), NewLedger())
		require.NoError(t, err)
		assert.Less(t, time.Since(started), 2*time.Second)
		assert.True(t, day.Items[1].Travel.Estimated)
	})
}

type blockingOracle struct{}

func (blockingOracle) TravelTime(ctx context.Context, _, _ types.Location, _ types.TravelMode) (*types.TravelInfo, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDayScheduler_Cancelled(t *testing.T) {
	pace := PaceFor(types.PaceModerate)
	s := NewDayScheduler(pace, &fixedOracle{minutes: 10}, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := NewLedger("x")
	day, out, err := s.BuildDay(ctx, dayRequest(activities(pace, place("p1", "Empress Garden", 4.3, 18.50, 73.88, "park"))), in)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, day.Items)
	assert.Equal(t, 1, out.Len())
	assert.False(t, out.Contains("p1"))
}

func TestTravelHelpers(t *testing.T) {
	a := types.Location{Lat: 0, Lng: 0}
	b := types.Location{Lat: 0, Lng: 1}

	assert.InDelta(t, 111.19, HaversineKm(a, b), 0.01)
	assert.Equal(t, types.ModeWalking, ChooseMode(1.99))
	assert.Equal(t, types.ModeTransit, ChooseMode(2.0))

	leg := EstimateTravel(a, b, types.ModeTransit)
	assert.True(t, leg.Estimated)
	assert.Equal(t, 334, leg.DurationMinutes)

	walk := EstimateTravel(a, types.Location{Lat: 0, Lng: 0.009}, types.ModeWalking)
	assert.Equal(t, 13, walk.DurationMinutes)
}

func TestPool(t *testing.T) {
	pace := PaceFor(types.PaceModerate)
	acts := activities(pace,
		place("a", "A", 4, 0, 0, "park"),
		place("b", "B", 4, 0, 0, "park"),
		place("c", "C", 4, 0, 0, "park"),
	)
	p := NewPool(acts...)

	taken := p.Take(2)
	assert.Len(t, taken, 2)
	assert.Equal(t, 1, p.Len())

	p.Return(taken[1:])
	require.Equal(t, 2, p.Len())
	assert.Equal(t, "b", p.Items()[0].Place.ID)
	assert.Equal(t, "c", p.Items()[1].Place.ID)

	assert.Len(t, p.Take(10), 2)
	assert.Zero(t, p.Len())
}

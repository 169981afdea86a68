package planner

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func ptr[T any](v T) *T { return &v }

func place(id, name string, rating float64, lat, lng float64, tags ...string) types.Place {
	return types.Place{
		ID:          id,
		Name:        name,
		Address:     name + ", Pune",
		Location:    types.Location{Lat: lat, Lng: lng},
		Rating:      ptr(rating),
		RatingCount: 120,
		Types:       tags,
	}
}

// fixedOracle answers every leg with the same duration.
type fixedOracle struct {
	mu      sync.Mutex
	minutes int
	calls   int
}

func (o *fixedOracle) TravelTime(_ context.Context, origin, destination types.Location, mode types.TravelMode) (*types.TravelInfo, error) {
	o.mu.Lock()
	o.calls++
	o.mu.Unlock()
	return &types.TravelInfo{
		DistanceKm:      HaversineKm(origin, destination),
		DurationMinutes: o.minutes,
		Mode:            mode,
	}, nil
}

// MockOracle lets tests script failures.
type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) TravelTime(ctx context.Context, origin, destination types.Location, mode types.TravelMode) (*types.TravelInfo, error) {
	args := m.Called(ctx, origin, destination, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TravelInfo), args.Error(1)
}

func tripPrefs(t *testing.T, days int, pace types.Pace, tier types.BudgetTier, interests ...types.Interest) types.TravelPreferences {
	t.Helper()
	start := time.Date(2030, 3, 10, 0, 0, 0, 0, time.UTC)
	if len(interests) == 0 {
		interests = []types.Interest{types.InterestCulture}
	}
	return types.TravelPreferences{
		Destination:        "Pune",
		StartDate:          start,
		EndDate:            start.AddDate(0, 0, days-1),
		BudgetTier:         tier,
		Interests:          interests,
		MaxDailyDistanceKm: types.DefaultMaxDailyDistanceKm,
		Pace:               pace,
	}
}

// cityCatalog is a mixed catalog around Pune.
func cityCatalog() []types.Place {
	return []types.Place{
		place("m1", "Raja Dinkar Kelkar Museum", 4.6, 18.5104, 73.8567, "museum", "point_of_interest"),
		place("m2", "Tribal Museum", 4.2, 18.5300, 73.8700, "museum"),
		place("g1", "Darshan Art Gallery", 4.1, 18.5200, 73.8400, "art_gallery"),
		place("h1", "Shaniwar Wada", 4.5, 18.5195, 73.8553, "historical_place", "tourist_attraction"),
		place("h2", "Lal Mahal", 4.0, 18.5187, 73.8567, "monument"),
		place("t1", "Dagdusheth Ganpati", 4.8, 18.5164, 73.8561, "hindu_temple", "place_of_worship"),
		place("t2", "Pataleshwar Cave Temple", 4.4, 18.5268, 73.8497, "hindu_temple"),
		place("p1", "Empress Garden", 4.3, 18.5018, 73.8850, "park"),
		place("p2", "Saras Baug", 4.2, 18.5008, 73.8520, "park"),
		place("s1", "Phoenix Marketcity", 4.5, 18.5622, 73.9167, "shopping_mall"),
		place("s2", "Laxmi Road Market", 4.0, 18.5158, 73.8520, "store"),
		place("a1", "Aga Khan Palace", 4.5, 18.5523, 73.9015, "tourist_attraction"),
		place("a2", "Osho Garden", 4.1, 18.5355, 73.8855, "tourist_attraction", "park"),
		place("r1", "Vaishali", 4.5, 18.5205, 73.8415, "restaurant", "food"),
		place("r2", "Shabree", 4.3, 18.5160, 73.8470, "restaurant"),
		place("r3", "Good Luck Cafe", 4.4, 18.5170, 73.8410, "cafe", "food"),
		place("r4", "Kayani Bakery", 4.6, 18.5190, 73.8790, "restaurant", "cafe"),
		place("r5", "Malaka Spice", 4.2, 18.5390, 73.8890, "restaurant"),
		place("r6", "Cafe Goodluck Annex", 3.9, 18.5175, 73.8420, "cafe"),
		place("x1", "Pune Okayama Friendship Garden", 4.4, 18.4920, 73.8360, "park", "point_of_interest"),
	}
}

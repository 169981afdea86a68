package advisory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func museumVisit() TipRequest {
	return TipRequest{
		PlaceName:     "Raja Dinkar Kelkar Museum",
		Category:      "museum",
		VisitTime:     "09:30",
		DurationHours: 2,
		City:          "Pune",
		BudgetTier:    types.BudgetLow,
		Pace:          types.PaceModerate,
	}
}

func TestService_TipsFor(t *testing.T) {
	ctx := context.Background()

	t.Run("generated tips are parsed and cached", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, mock.AnythingOfType("string")).
			Return("1. Start on the top floor\n- Lamps gallery is the highlight\n\n* Cafe opposite is good\n• Lockers at entry\nExtra line", nil).Once()

		s := NewService(gen, time.Minute, time.Second, testLogger)
		assert.False(t, s.HasContent("Raja Dinkar Kelkar Museum"))

		tips := s.TipsFor(ctx, museumVisit())
		assert.Equal(t, []string{
			"Start on the top floor",
			"Lamps gallery is the highlight",
			"Cafe opposite is good",
			"Lockers at entry",
		}, tips)
		assert.True(t, s.HasContent("  raja dinkar   kelkar museum"))

		again := s.TipsFor(ctx, museumVisit())
		assert.Equal(t, tips, again)
		gen.AssertExpectations(t)
	})

	t.Run("generator failure falls back to category tips", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota")).Once()

		s := NewService(gen, time.Minute, time.Second, testLogger)
		tips := s.TipsFor(ctx, museumVisit())
		assert.Equal(t, []string{
			"Arrive within the first hour of opening for fewer crowds",
			"Photography rules vary, check at the entrance",
			"Museums are least crowded in the morning",
			"Ask about student and senior discounts",
		}, tips)
		assert.False(t, s.HasContent("Raja Dinkar Kelkar Museum"))
		gen.AssertExpectations(t)
	})

	t.Run("empty generation falls back", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).Return("  \n ", nil).Once()

		tips := NewService(gen, time.Minute, time.Second, testLogger).TipsFor(ctx, museumVisit())
		assert.Len(t, tips, maxTips)
	})

	t.Run("no generator", func(t *testing.T) {
		req := museumVisit()
		req.Category = "restaurant"
		req.VisitTime = "19:30"
		req.BudgetTier = types.BudgetMedium

		tips := NewService(nil, time.Minute, time.Second, testLogger).TipsFor(ctx, req)
		assert.Equal(t, []string{"Try the local specialities", "Book ahead if the place is popular", "Reserve a table for dinner"}, tips)
	})
}

func TestFallbackTips(t *testing.T) {
	tests := []struct {
		name string
		req  TipRequest
		want string
	}{
		{"park afternoon", TipRequest{Category: "park", VisitTime: "14:00"}, "Can be hot, look for shaded paths"},
		{"packed park", TipRequest{Category: "park", VisitTime: "08:00", Pace: types.PacePacked}, "A 30-45 minute loop is enough"},
		{"unknown category uses landmark", TipRequest{Category: "attraction", VisitTime: "18:00"}, "Golden hour is the best time for photos"},
		{"breakfast", TipRequest{Category: "restaurant", VisitTime: "08:00"}, "Breakfast is usually quick and uncrowded"},
		{"bad time is morning", TipRequest{Category: "temple", VisitTime: "soon"}, "Early morning darshan is the most peaceful"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := fallbackTips(tt.req)
			assert.Contains(t, tips, tt.want)
			assert.LessOrEqual(t, len(tips), maxTips)
		})
	}
}

package planner

import (
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

func Clock(hour, minute int) ClockTime { return ClockTime(hour*60 + minute) }

// On anchors the clock time to a calendar date.
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(time.Duration(c) * time.Minute)
}

// ClockOf extracts the time of day from t.
func ClockOf(t time.Time) ClockTime {
	return Clock(t.Hour(), t.Minute())
}

// PaceConfig holds the daily rhythm for a pace setting.
type PaceConfig struct {
	Pace                   types.Pace
	DayStart               ClockTime
	DayEnd                 ClockTime
	Breakfast              ClockTime
	Lunch                  ClockTime
	Dinner                 ClockTime
	TargetActivities       int
	DurationMultiplier     float64
	MealDurationMultiplier float64
}

// MorningSlots is how many activities the morning fill aims for.
func (c PaceConfig) MorningSlots() int {
	return max(1, c.TargetActivities/2)
}

// MealTime returns the planned start of a meal.
func (c PaceConfig) MealTime(m types.MealType) ClockTime {
	switch m {
	case types.MealBreakfast:
		return c.Breakfast
	case types.MealLunch:
		return c.Lunch
	default:
		return c.Dinner
	}
}

// PaceFor returns the rhythm for a pace; unknown paces get moderate.
func PaceFor(p types.Pace) PaceConfig {
	switch p {
	case types.PaceRelaxed:
		return PaceConfig{
			Pace:                   types.PaceRelaxed,
			DayStart:               Clock(9, 0),
			DayEnd:                 Clock(22, 0),
			Breakfast:              Clock(9, 0),
			Lunch:                  Clock(13, 30),
			Dinner:                 Clock(19, 30),
			TargetActivities:       3,
			DurationMultiplier:     1.2,
			MealDurationMultiplier: 1.3,
		}
	case types.PacePacked:
		return PaceConfig{
			Pace:                   types.PacePacked,
			DayStart:               Clock(7, 0),
			DayEnd:                 Clock(23, 0),
			Breakfast:              Clock(7, 30),
			Lunch:                  Clock(12, 30),
			Dinner:                 Clock(19, 0),
			TargetActivities:       5,
			DurationMultiplier:     0.85,
			MealDurationMultiplier: 0.8,
		}
	default:
		return PaceConfig{
			Pace:                   types.PaceModerate,
			DayStart:               Clock(8, 0),
			DayEnd:                 Clock(22, 0),
			Breakfast:              Clock(8, 0),
			Lunch:                  Clock(13, 0),
			Dinner:                 Clock(20, 0),
			TargetActivities:       4,
			DurationMultiplier:     1.0,
			MealDurationMultiplier: 1.0,
		}
	}
}

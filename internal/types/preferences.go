package types

import (
	"fmt"
	"strings"
	"time"
)

type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

func (t BudgetTier) Valid() bool {
	switch t {
	case BudgetLow, BudgetMedium, BudgetHigh:
		return true
	}
	return false
}

type Pace string

const (
	PaceRelaxed  Pace = "relaxed"
	PaceModerate Pace = "moderate"
	PacePacked   Pace = "packed"
)

func (p Pace) Valid() bool {
	switch p {
	case PaceRelaxed, PaceModerate, PacePacked:
		return true
	}
	return false
}

type Interest string

const (
	InterestCulture    Interest = "culture"
	InterestFood       Interest = "food"
	InterestAdventure  Interest = "adventure"
	InterestNature     Interest = "nature"
	InterestShopping   Interest = "shopping"
	InterestHistory    Interest = "history"
	InterestNightlife  Interest = "nightlife"
	InterestRelaxation Interest = "relaxation"
)

var knownInterests = map[Interest]struct{}{
	InterestCulture: {}, InterestFood: {}, InterestAdventure: {}, InterestNature: {},
	InterestShopping: {}, InterestHistory: {}, InterestNightlife: {}, InterestRelaxation: {},
}

type DietaryRestriction string

var knownDietary = map[DietaryRestriction]struct{}{
	"vegetarian": {}, "vegan": {}, "gluten_free": {}, "halal": {}, "kosher": {}, "jain": {}, "none": {},
}

const (
	CustomBudgetMinPerDay     = 1000.0
	CustomBudgetMaxPerDay     = 50000.0
	DefaultMaxDailyDistanceKm = 50.0
	MaxDailyDistanceLimitKm   = 200.0
	MaxTripDays               = 30

	dateLayout = "2006-01-02"
)

// TravelPreferences is the single structured form of a traveller's request.
// Everything downstream of the HTTP/CLI boundary works on this type only.
type TravelPreferences struct {
	Destination           string
	StartDate             time.Time
	EndDate               time.Time
	BudgetTier            BudgetTier // empty when only a custom total is given
	CustomBudget          *float64
	Interests             []Interest
	MustVisit             []string
	DietaryRestrictions   []DietaryRestriction
	MaxDailyDistanceKm    float64
	Pace                  Pace
	AccommodationLocation string
}

// NumDays counts calendar days, both ends included.
func (p TravelPreferences) NumDays() int {
	d := int(dateOnly(p.EndDate).Sub(dateOnly(p.StartDate)).Hours()/24) + 1
	if d < 1 {
		return 1
	}
	return d
}

// DayDate returns the calendar date of the given 1-based day.
func (p TravelPreferences) DayDate(day int) time.Time {
	return dateOnly(p.StartDate).AddDate(0, 0, day-1)
}

func (p TravelPreferences) HasCustomBudget() bool {
	return p.CustomBudget != nil
}

// Validate checks the preferences against today's date. A non-nil result is
// always a *ValidationError.
func (p TravelPreferences) Validate(today time.Time) error {
	verr := &ValidationError{}

	if len(strings.TrimSpace(p.Destination)) < 2 {
		verr.add("destination", "must be at least 2 characters")
	}
	if p.StartDate.IsZero() {
		verr.add("start_date", "is required")
	} else if dateOnly(p.StartDate).Before(dateOnly(today)) {
		verr.add("start_date", "cannot be in the past")
	}
	if p.EndDate.IsZero() {
		verr.add("end_date", "is required")
	} else if !p.StartDate.IsZero() && !dateOnly(p.EndDate).After(dateOnly(p.StartDate)) {
		verr.add("end_date", "must be after start_date")
	} else if !p.StartDate.IsZero() && p.NumDays() > MaxTripDays {
		verr.add("end_date", fmt.Sprintf("trip cannot be longer than %d days", MaxTripDays))
	}

	if len(p.Interests) == 0 {
		verr.add("interests", "at least one interest is required")
	}
	for _, i := range p.Interests {
		if _, ok := knownInterests[i]; !ok {
			verr.add("interests", fmt.Sprintf("unknown interest %q", i))
		}
	}
	for _, d := range p.DietaryRestrictions {
		if _, ok := knownDietary[d]; !ok {
			verr.add("dietary_restrictions", fmt.Sprintf("unknown restriction %q", d))
		}
	}

	switch {
	case p.BudgetTier == "" && p.CustomBudget == nil:
		verr.add("budget", "either budget_range or custom_budget must be provided")
	case p.BudgetTier != "" && !p.BudgetTier.Valid():
		verr.add("budget_range", fmt.Sprintf("unknown budget range %q", p.BudgetTier))
	}
	if p.CustomBudget != nil && len(verr.Fields) == 0 {
		perDay := *p.CustomBudget / float64(p.NumDays())
		if perDay < CustomBudgetMinPerDay {
			verr.add("custom_budget", fmt.Sprintf("budget too low: %.0f/day, minimum %.0f/day", perDay, CustomBudgetMinPerDay))
		}
		if perDay > CustomBudgetMaxPerDay {
			verr.add("custom_budget", fmt.Sprintf("budget unrealistic: %.0f/day, maximum %.0f/day", perDay, CustomBudgetMaxPerDay))
		}
	}

	if p.MaxDailyDistanceKm <= 0 || p.MaxDailyDistanceKm > MaxDailyDistanceLimitKm {
		verr.add("max_daily_distance", "must be in (0, 200]")
	}
	if !p.Pace.Valid() {
		verr.add("pace", fmt.Sprintf("unknown pace %q", p.Pace))
	}

	return verr.orNil()
}

// PlanRequest is the wire shape of a planning request. It is converted to
// TravelPreferences before reaching the engine.
type PlanRequest struct {
	Destination           string   `json:"destination" yaml:"destination" example:"Pune, India"`
	StartDate             string   `json:"start_date" yaml:"start_date" example:"2026-11-02"`
	EndDate               string   `json:"end_date" yaml:"end_date" example:"2026-11-04"`
	BudgetRange           string   `json:"budget_range,omitempty" yaml:"budget_range" example:"medium"`
	CustomBudget          *float64 `json:"custom_budget,omitempty" yaml:"custom_budget"`
	Interests             []string `json:"interests" yaml:"interests"`
	MustVisit             []string `json:"must_visit,omitempty" yaml:"must_visit"`
	DietaryRestrictions   []string `json:"dietary_restrictions,omitempty" yaml:"dietary_restrictions"`
	MaxDailyDistance      *float64 `json:"max_daily_distance,omitempty" yaml:"max_daily_distance"`
	Pace                  string   `json:"pace,omitempty" yaml:"pace" example:"moderate"`
	AccommodationLocation string   `json:"accommodation_location,omitempty" yaml:"accommodation_location"`
}

// ToPreferences parses and validates the request.
func (r PlanRequest) ToPreferences(today time.Time) (TravelPreferences, error) {
	verr := &ValidationError{}
	prefs := TravelPreferences{
		Destination:           strings.TrimSpace(r.Destination),
		BudgetTier:            BudgetTier(strings.ToLower(strings.TrimSpace(r.BudgetRange))),
		CustomBudget:          r.CustomBudget,
		MaxDailyDistanceKm:    DefaultMaxDailyDistanceKm,
		Pace:                  PaceModerate,
		AccommodationLocation: r.AccommodationLocation,
	}

	if r.StartDate != "" {
		d, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			verr.add("start_date", "must be formatted as YYYY-MM-DD")
		}
		prefs.StartDate = d
	}
	if r.EndDate != "" {
		d, err := time.Parse(dateLayout, r.EndDate)
		if err != nil {
			verr.add("end_date", "must be formatted as YYYY-MM-DD")
		}
		prefs.EndDate = d
	}
	if len(verr.Fields) > 0 {
		return TravelPreferences{}, verr
	}

	for _, i := range r.Interests {
		prefs.Interests = append(prefs.Interests, Interest(strings.ToLower(strings.TrimSpace(i))))
	}
	for _, m := range r.MustVisit {
		if m = strings.TrimSpace(m); m != "" {
			prefs.MustVisit = append(prefs.MustVisit, m)
		}
	}
	for _, d := range r.DietaryRestrictions {
		prefs.DietaryRestrictions = append(prefs.DietaryRestrictions, DietaryRestriction(strings.ToLower(d)))
	}
	if r.MaxDailyDistance != nil {
		prefs.MaxDailyDistanceKm = *r.MaxDailyDistance
	}
	if r.Pace != "" {
		prefs.Pace = Pace(strings.ToLower(r.Pace))
	}

	if err := prefs.Validate(today); err != nil {
		return TravelPreferences{}, err
	}
	return prefs, nil
}

// FormatDate renders a calendar date the way the API expects it.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ItemKind string

const (
	ItemActivity ItemKind = "activity"
	ItemMeal     ItemKind = "meal"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// ScheduledItem is a stop placed at a specific time on a specific day.
// It is never modified after being appended to a day, except for the
// advisory tips attached once the itinerary is final.
type ScheduledItem struct {
	Sequence      int        `json:"sequence"`
	Day           int        `json:"day"`
	PlaceID       string     `json:"place_id"`
	Name          string     `json:"activity_name"`
	Kind          ItemKind   `json:"kind"`
	MealType      MealType   `json:"meal_type,omitempty"`
	Category      string     `json:"category"`
	Subcategory   string     `json:"subcategory,omitempty"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	StartTime     string     `json:"start_time"` // HH:MM
	EndTime       string     `json:"end_time"`   // HH:MM
	DurationHours float64    `json:"duration_hours"`
	Location      Location   `json:"location"`
	Address       string     `json:"address,omitempty"`
	Cost          float64    `json:"cost"`
	Rating        *float64   `json:"rating,omitempty"`
	Travel        TravelInfo `json:"travel_from_previous"`
	MustVisit     bool       `json:"must_visit"`
	Score         float64    `json:"score"`
	Tips          []string   `json:"insider_tips,omitempty"`
}

func (i ScheduledItem) IsMeal() bool { return i.Kind == ItemMeal }

// DaySummary is derived from a day's items.
type DaySummary struct {
	TotalItems      int     `json:"total_items"`
	ActivitiesCount int     `json:"activities_count"`
	MealsCount      int     `json:"meals_count"`
	MealsAttempted  int     `json:"meals_attempted"`
	MealsSkipped    int     `json:"meals_skipped"`
	TotalCost       float64 `json:"total_cost"`
	ActivitiesCost  float64 `json:"activities_cost"`
	MealsCost       float64 `json:"meals_cost"`
	TravelKm        float64 `json:"travel_km"`
	StartTime       string  `json:"start_time,omitempty"`
	EndTime         string  `json:"end_time,omitempty"`
}

type DaySchedule struct {
	Day     int             `json:"day"`
	Date    string          `json:"date"`
	Items   []ScheduledItem `json:"activities"`
	Summary DaySummary      `json:"summary"`
}

// ConstraintDetail is the outcome of a single constraint.
type ConstraintDetail struct {
	Name       string   `json:"name"`
	Priority   int      `json:"priority"`
	Satisfied  bool     `json:"satisfied"`
	Penalty    float64  `json:"penalty"`
	Violations []string `json:"violations,omitempty"`
}

// ValidationReport aggregates every constraint over a flattened schedule.
type ValidationReport struct {
	AllSatisfied             bool               `json:"all_satisfied"`
	HardConstraintsSatisfied bool               `json:"hard_constraints_satisfied"`
	TotalPenalty             float64            `json:"total_penalty"`
	Details                  []ConstraintDetail `json:"constraint_details"`
	MissingMustVisit         []string           `json:"missing_must_visit,omitempty"`
	// Reasons explains an infeasible outcome no constraint accounts for.
	Reasons                  []string           `json:"reasons,omitempty"`
}

type OverallSummary struct {
	TotalDays            int            `json:"total_days"`
	TotalItems           int            `json:"total_items"`
	TotalActivities      int            `json:"total_activities"`
	TotalMeals           int            `json:"total_meals"`
	TotalCost            float64        `json:"total_cost"`
	TotalBudget          float64        `json:"total_budget"`
	BudgetUsedPercentage float64        `json:"budget_used_percentage"`
	BudgetRemaining      float64        `json:"budget_remaining"`
	CategoryDistribution map[string]int `json:"category_distribution"`
	TotalTravelKm        float64        `json:"total_travel_km"`
	Pace                 Pace           `json:"pace"`
}

type OptimizationMetrics struct {
	CandidatesConsidered int     `json:"candidates_considered"`
	AverageScore         float64 `json:"average_score"`
	CandidateUtilisation float64 `json:"candidate_utilisation"`
	MandatoryCoverage    float64 `json:"mandatory_coverage"`
	TravelFallbacks      int     `json:"travel_fallbacks"`
}

type ItineraryStatus string

const (
	StatusSuccess      ItineraryStatus = "success"
	StatusInfeasible   ItineraryStatus = "infeasible"
	StatusNoCandidates ItineraryStatus = "no_candidates"
	StatusCancelled    ItineraryStatus = "cancelled"
	StatusError        ItineraryStatus = "error"
)

// Itinerary is the engine's output.
type Itinerary struct {
	Destination string              `json:"destination"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	NumDays     int                 `json:"num_days"`
	Days        []DaySchedule       `json:"days"`
	TotalCost   float64             `json:"total_cost"`
	Status      ItineraryStatus     `json:"status"`
	Validation  ValidationReport    `json:"validation"`
	Summary     OverallSummary      `json:"summary"`
	Metrics     OptimizationMetrics `json:"metrics"`
}

// Items flattens every day in order.
func (it *Itinerary) Items() []ScheduledItem {
	var out []ScheduledItem
	for _, d := range it.Days {
		out = append(out, d.Items...)
	}
	return out
}

// ItineraryResult is the API response for a planning request.
type ItineraryResult struct {
	Status               ItineraryStatus        `json:"status"`
	Message              string                 `json:"message,omitempty"`
	Destination          string                 `json:"destination,omitempty"`
	Itinerary            map[string]DaySchedule `json:"itinerary,omitempty"`
	OverallSummary       *OverallSummary        `json:"overall_summary,omitempty"`
	ConstraintValidation *ValidationReport      `json:"constraint_validation,omitempty"`
	OptimizationMetrics  *OptimizationMetrics   `json:"optimization_metrics,omitempty"`
}

// NewItineraryResult shapes an itinerary for the API, keying days as day_N.
func NewItineraryResult(it *Itinerary, message string) *ItineraryResult {
	res := &ItineraryResult{
		Status:               it.Status,
		Message:              message,
		Destination:          it.Destination,
		Itinerary:            make(map[string]DaySchedule, len(it.Days)),
		OverallSummary:       &it.Summary,
		ConstraintValidation: &it.Validation,
		OptimizationMetrics:  &it.Metrics,
	}
	for _, d := range it.Days {
		res.Itinerary[fmt.Sprintf("day_%d", d.Day)] = d
	}
	return res
}

// FailedResult is returned when no itinerary could be produced at all.
func FailedResult(status ItineraryStatus, destination, message string) *ItineraryResult {
	return &ItineraryResult{Status: status, Destination: destination, Message: message}
}

// SavedItinerary is a generated itinerary persisted for a user.
type SavedItinerary struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Destination string          `json:"destination"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Status      ItineraryStatus `json:"status"`
	TotalCost   float64         `json:"total_cost"`
	Result      ItineraryResult `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
}

type PaginatedItinerariesResponse struct {
	Itineraries  []SavedItinerary `json:"itineraries"`
	TotalRecords int              `json:"total_records"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
}

// SaveItineraryRequest persists a previously generated result.
type SaveItineraryRequest struct {
	StartDate string          `json:"start_date" example:"2026-11-02"`
	EndDate   string          `json:"end_date" example:"2026-11-04"`
	Itinerary ItineraryResult `json:"itinerary"`
}

// Validate checks the request before it is stored.
func (r SaveItineraryRequest) Validate() error {
	verr := &ValidationError{}
	start, errStart := time.Parse(dateLayout, r.StartDate)
	if errStart != nil {
		verr.add("start_date", "must be formatted as YYYY-MM-DD")
	}
	end, errEnd := time.Parse(dateLayout, r.EndDate)
	if errEnd != nil {
		verr.add("end_date", "must be formatted as YYYY-MM-DD")
	}
	if errStart == nil && errEnd == nil && end.Before(start) {
		verr.add("end_date", "must not be before start_date")
	}
	if len(strings.TrimSpace(r.Itinerary.Destination)) < 2 {
		verr.add("itinerary.destination", "must be at least 2 characters")
	}
	switch r.Itinerary.Status {
	case StatusSuccess, StatusInfeasible:
	default:
		verr.add("itinerary.status", fmt.Sprintf("cannot save a %q result", r.Itinerary.Status))
	}
	return verr.orNil()
}

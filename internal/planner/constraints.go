package planner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Priority orders constraints. Only hard constraints decide feasibility.
type Priority int

const (
	PriorityHard       Priority = 1
	PrioritySoft       Priority = 2
	PriorityPreference Priority = 3
)

// Constraint is a rule evaluated over a flattened schedule.
type Constraint interface {
	Name() string
	Priority() Priority
	IsSatisfied(items []types.ScheduledItem) bool
	// ViolationScore is 0 when nothing is wrong.
	ViolationScore(items []types.ScheduledItem) float64
}

// ViolationReporter is implemented by constraints that can explain themselves.
type ViolationReporter interface {
	Violations(items []types.ScheduledItem) []string
}

// TimeWindowConstraint keeps every item inside the active day window.
type TimeWindowConstraint struct {
	Start ClockTime
	End   ClockTime
}

func (TimeWindowConstraint) Name() string       { return "Time Window" }
func (TimeWindowConstraint) Priority() Priority { return PriorityHard }

func (c TimeWindowConstraint) IsSatisfied(items []types.ScheduledItem) bool {
	return c.ViolationScore(items) == 0
}

func (c TimeWindowConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	penalty := 0.0
	for _, it := range items {
		early, late := c.breaches(it)
		if early {
			penalty += 100
		}
		if late {
			penalty += 100
		}
	}
	return penalty
}

func (c TimeWindowConstraint) Violations(items []types.ScheduledItem) []string {
	var out []string
	for _, it := range items {
		early, late := c.breaches(it)
		if early {
			out = append(out, fmt.Sprintf("day %d: %s starts at %s", it.Day, it.Name, it.StartTime))
		}
		if late {
			out = append(out, fmt.Sprintf("day %d: %s ends at %s", it.Day, it.Name, it.EndTime))
		}
	}
	return out
}

func (c TimeWindowConstraint) breaches(it types.ScheduledItem) (early, late bool) {
	start := ClockOf(it.Start)
	end := ClockOf(it.End) + ClockTime(daysBetween(it.Start, it.End)*24*60)
	return start < c.Start, end > c.End
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// BudgetConstraint caps the realized total cost.
type BudgetConstraint struct {
	MaxBudget float64
}

func (BudgetConstraint) Name() string       { return "Budget" }
func (BudgetConstraint) Priority() Priority { return PriorityHard }

func (c BudgetConstraint) IsSatisfied(items []types.ScheduledItem) bool {
	return totalCost(items) <= c.MaxBudget
}

func (c BudgetConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	total := totalCost(items)
	if total <= c.MaxBudget {
		return 0
	}
	if c.MaxBudget <= 0 {
		return 1000
	}
	return (total - c.MaxBudget) / c.MaxBudget * 1000
}

func (c BudgetConstraint) Violations(items []types.ScheduledItem) []string {
	if total := totalCost(items); total > c.MaxBudget {
		return []string{fmt.Sprintf("total cost %.0f exceeds budget %.0f", total, c.MaxBudget)}
	}
	return nil
}

func totalCost(items []types.ScheduledItem) float64 {
	sum := 0.0
	for _, it := range items {
		sum += it.Cost
	}
	return sum
}

// MustVisitConstraint requires every mandatory name to appear in some
// scheduled item's name.
type MustVisitConstraint struct {
	names []string
}

func NewMustVisitConstraint(names []string) MustVisitConstraint {
	c := MustVisitConstraint{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			c.names = append(c.names, n)
		}
	}
	return c
}

func (MustVisitConstraint) Name() string       { return "Must Visit" }
func (MustVisitConstraint) Priority() Priority { return PriorityHard }

func (c MustVisitConstraint) IsSatisfied(items []types.ScheduledItem) bool {
	return len(c.Missing(items)) == 0
}

func (c MustVisitConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	return float64(len(c.Missing(items))) * 500
}

func (c MustVisitConstraint) Violations(items []types.ScheduledItem) []string {
	var out []string
	for _, m := range c.Missing(items) {
		out = append(out, "not scheduled: "+m)
	}
	return out
}

// Missing lists mandatory names with no scheduled item containing them.
func (c MustVisitConstraint) Missing(items []types.ScheduledItem) []string {
	var missing []string
	for _, name := range c.names {
		want := strings.ToLower(name)
		found := false
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.Name), want) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing
}

// DailyDistanceConstraint limits the travel distance of each calendar day.
type DailyDistanceConstraint struct {
	MaxDailyKm float64
}

func (DailyDistanceConstraint) Name() string       { return "Daily Distance" }
func (DailyDistanceConstraint) Priority() Priority { return PrioritySoft }

func (c DailyDistanceConstraint) IsSatisfied(items []types.ScheduledItem) bool {
	return c.ViolationScore(items) == 0
}

func (c DailyDistanceConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	penalty := 0.0
	perDay := distancePerDay(items)
	for day := 1; day <= maxDay(items); day++ {
		if km := perDay[day]; km > c.MaxDailyKm {
			penalty += (km - c.MaxDailyKm) * 5
		}
	}
	return penalty
}

func (c DailyDistanceConstraint) Violations(items []types.ScheduledItem) []string {
	var out []string
	perDay := distancePerDay(items)
	for day := 1; day <= maxDay(items); day++ {
		if km, ok := perDay[day]; ok && km > c.MaxDailyKm {
			out = append(out, fmt.Sprintf("day %d: %.1f km exceeds %.1f km", day, km, c.MaxDailyKm))
		}
	}
	return out
}

func distancePerDay(items []types.ScheduledItem) map[int]float64 {
	out := make(map[int]float64)
	for _, it := range items {
		out[it.Day] += it.Travel.DistanceKm
	}
	return out
}

func maxDay(items []types.ScheduledItem) int {
	m := 0
	for _, it := range items {
		m = max(m, it.Day)
	}
	return m
}

type mealWindow struct {
	from, to ClockTime
}

var mealWindows = []mealWindow{
	{Clock(8, 0), Clock(10, 0)},
	{Clock(12, 0), Clock(14, 30)},
	{Clock(18, 30), Clock(21, 0)},
}

// MealTimeConstraint penalizes meals that start outside usual meal hours.
// It never fails.
type MealTimeConstraint struct{}

func (MealTimeConstraint) Name() string                             { return "Meal Times" }
func (MealTimeConstraint) Priority() Priority                       { return PrioritySoft }
func (MealTimeConstraint) IsSatisfied(_ []types.ScheduledItem) bool { return true }

func (c MealTimeConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	return float64(len(c.Violations(items))) * 20
}

func (MealTimeConstraint) Violations(items []types.ScheduledItem) []string {
	var out []string
	for _, it := range items {
		if !it.IsMeal() && it.Category != CategoryRestaurant {
			continue
		}
		start := ClockOf(it.Start)
		inWindow := false
		for _, w := range mealWindows {
			if start >= w.from && start <= w.to {
				inWindow = true
				break
			}
		}
		if !inWindow {
			out = append(out, fmt.Sprintf("day %d: %s at %s is outside meal hours", it.Day, it.Name, it.StartTime))
		}
	}
	return out
}

// varietyExempt categories may repeat back to back.
var varietyExempt = map[string]bool{
	CategoryRestaurant: true,
	CategoryLandmark:   true,
	CategoryHistorical: true,
}

// VarietyConstraint discourages runs of the same category within a day.
// It never fails.
type VarietyConstraint struct{}

func (VarietyConstraint) Name() string                             { return "Activity Variety" }
func (VarietyConstraint) Priority() Priority                       { return PriorityPreference }
func (VarietyConstraint) IsSatisfied(_ []types.ScheduledItem) bool { return true }

func (VarietyConstraint) ViolationScore(items []types.ScheduledItem) float64 {
	penalty := 0.0
	for i := 0; i+1 < len(items); i++ {
		a, b := items[i], items[i+1]
		if a.Day != b.Day || a.Category != b.Category || varietyExempt[a.Category] {
			continue
		}
		penalty += 40
		if i+2 < len(items) && items[i+2].Day == a.Day && items[i+2].Category == a.Category {
			penalty += 100
		}
	}
	return penalty
}

// Registry holds the constraint set of one build.
type Registry struct {
	constraints []Constraint
}

func NewRegistry(constraints ...Constraint) *Registry {
	return &Registry{constraints: constraints}
}

// DefaultRegistry installs the fixed rule set for a trip.
func DefaultRegistry(prefs types.TravelPreferences, pace PaceConfig, totalBudget float64) *Registry {
	r := NewRegistry(
		TimeWindowConstraint{Start: pace.DayStart, End: pace.DayEnd},
		BudgetConstraint{MaxBudget: totalBudget},
	)
	if len(prefs.MustVisit) > 0 {
		r.Add(NewMustVisitConstraint(prefs.MustVisit))
	}
	r.Add(DailyDistanceConstraint{MaxDailyKm: prefs.MaxDailyDistanceKm})
	r.Add(MealTimeConstraint{})
	r.Add(VarietyConstraint{})
	return r
}

func (r *Registry) Add(c Constraint) {
	r.constraints = append(r.constraints, c)
}

func (r *Registry) Constraints() []Constraint { return r.constraints }

func (r *Registry) HardConstraints() []Constraint {
	var out []Constraint
	for _, c := range r.constraints {
		if c.Priority() == PriorityHard {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) SoftConstraints() []Constraint {
	var out []Constraint
	for _, c := range r.constraints {
		if c.Priority() != PriorityHard {
			out = append(out, c)
		}
	}
	return out
}

// CheckAll evaluates every constraint against the flattened schedule.
func (r *Registry) CheckAll(items []types.ScheduledItem) types.ValidationReport {
	report := types.ValidationReport{
		AllSatisfied:             true,
		HardConstraintsSatisfied: true,
		Details:                  make([]types.ConstraintDetail, 0, len(r.constraints)),
	}
	for _, c := range r.constraints {
		satisfied := c.IsSatisfied(items)
		penalty := math.Round(c.ViolationScore(items)*100) / 100
		detail := types.ConstraintDetail{
			Name:      c.Name(),
			Priority:  int(c.Priority()),
			Satisfied: satisfied,
			Penalty:   penalty,
		}
		if vr, ok := c.(ViolationReporter); ok {
			detail.Violations = vr.Violations(items)
		}
		if mv, ok := c.(MustVisitConstraint); ok {
			report.MissingMustVisit = mv.Missing(items)
		}

		report.Details = append(report.Details, detail)
		report.TotalPenalty += penalty
		if !satisfied {
			report.AllSatisfied = false
			if c.Priority() == PriorityHard {
				report.HardConstraintsSatisfied = false
			}
		}
	}
	return report
}

package planner

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const (
	mustVisitBonus  = 200.0
	enrichmentBonus = 20.0
	maxPopularity   = 30.0
)

// tagInterests maps catalog tags to the interests they serve.
var tagInterests = map[string][]types.Interest{
	"museum":             {types.InterestCulture, types.InterestHistory},
	"art_gallery":        {types.InterestCulture},
	"restaurant":         {types.InterestFood},
	"cafe":               {types.InterestFood},
	"bar":                {types.InterestNightlife, types.InterestFood},
	"night_club":         {types.InterestNightlife},
	"park":               {types.InterestNature, types.InterestRelaxation},
	"amusement_park":     {types.InterestAdventure},
	"shopping_mall":      {types.InterestShopping},
	"store":              {types.InterestShopping},
	"church":             {types.InterestHistory, types.InterestCulture},
	"hindu_temple":       {types.InterestHistory, types.InterestCulture},
	"place_of_worship":   {types.InterestHistory, types.InterestCulture},
	"tourist_attraction": {types.InterestCulture},
	"spa":                {types.InterestRelaxation},
	"natural_feature":    {types.InterestNature},
}

// ScoredPlace pairs a candidate with its preference-fit score.
type ScoredPlace struct {
	Score float64     `json:"score"`
	Place types.Place `json:"place"`
}

// ActivityScorer ranks candidates by fit to one traveller's preferences.
type ActivityScorer struct {
	budget    *BudgetModel
	plan      Plan
	interests map[types.Interest]struct{}
	mustVisit []string
	enriched  map[string]bool
}

// NewActivityScorer builds a scorer. enriched holds the ids of places the
// advisory service already has content for; it may be nil.
func NewActivityScorer(prefs types.TravelPreferences, budget *BudgetModel, enriched map[string]bool) *ActivityScorer {
	s := &ActivityScorer{
		budget:    budget,
		plan:      budget.PlanFor(prefs),
		interests: make(map[types.Interest]struct{}, len(prefs.Interests)),
		mustVisit: normalizeNames(prefs.MustVisit),
		enriched:  enriched,
	}
	for _, i := range prefs.Interests {
		s.interests[i] = struct{}{}
	}
	return s
}

// Score rates a place, estimating its cost with the budget model.
func (s *ActivityScorer) Score(p types.Place) float64 {
	return s.score(p, s.budget.EstimateCost(p.PriceLevel, s.plan.Tier, p.Types))
}

func (s *ActivityScorer) scoreActivity(a Activity) float64 {
	return s.score(a.Place, a.Cost)
}

func (s *ActivityScorer) score(p types.Place, cost float64) float64 {
	score := p.RatingValue() / 5 * 100
	score += s.interestMatch(p.Types)
	score += s.budgetFit(p.PriceLevel, cost)
	if p.RatingCount > 0 {
		score += math.Min(maxPopularity, math.Log10(float64(p.RatingCount)+1)*10)
	}
	if s.IsMustVisit(p.Name) {
		score += mustVisitBonus
	}
	if s.enriched[p.ID] {
		score += enrichmentBonus
	}
	return score
}

func (s *ActivityScorer) interestMatch(tags []string) float64 {
	if len(s.interests) == 0 {
		return 50
	}
	matches := 0
	for _, t := range tags {
		for _, i := range tagInterests[t] {
			if _, ok := s.interests[i]; ok {
				matches++
			}
		}
	}
	switch {
	case matches == 0:
		return 20
	case matches == 1:
		return 60
	case matches == 2:
		return 80
	default:
		return 100
	}
}

func (s *ActivityScorer) budgetFit(priceLevel *int, cost float64) float64 {
	if priceLevel == nil {
		return 25
	}
	allowance := s.plan.PerActivity
	switch {
	case cost == 0, cost <= allowance*0.5:
		return 50
	case cost <= allowance:
		return 40
	case cost <= allowance*1.5:
		return 25
	default:
		return 10
	}
}

// IsMustVisit reports whether name fuzzy-matches a mandatory stop.
func (s *ActivityScorer) IsMustVisit(name string) bool {
	return matchesAny(name, s.mustVisit)
}

// RankActivities scores every place and sorts best first. Equal scores keep
// their input order.
func (s *ActivityScorer) RankActivities(places []types.Place) []ScoredPlace {
	out := make([]ScoredPlace, len(places))
	for i, p := range places {
		out[i] = ScoredPlace{Score: s.Score(p), Place: p}
	}
	slices.SortStableFunc(out, func(a, b ScoredPlace) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

func (s *ActivityScorer) rank(activities []Activity) []Activity {
	out := make([]Activity, len(activities))
	for i, a := range activities {
		a.Score = s.scoreActivity(a)
		a.MustVisit = s.IsMustVisit(a.Place.Name)
		out[i] = a
	}
	slices.SortStableFunc(out, func(a, b Activity) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchesAny is a case-insensitive substring match in either direction.
// wanted must already be normalized.
func matchesAny(name string, wanted []string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}
	for _, w := range wanted {
		if strings.Contains(n, w) || strings.Contains(w, n) {
			return true
		}
	}
	return false
}

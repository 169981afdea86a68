package planner

import (
	"math"
	"math/rand/v2"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// Scheduling categories.
const (
	CategoryMuseum     = "museum"
	CategoryRestaurant = "restaurant"
	CategoryPark       = "park"
	CategoryTemple     = "temple"
	CategoryShopping   = "shopping"
	CategoryLandmark   = "landmark"
	CategoryHistorical = "historical"
	CategoryAttraction = "attraction"
)

// categoryPriority is checked in order; the first group with a matching tag wins.
var categoryPriority = []struct {
	tags     []string
	category string
}{
	{[]string{"museum", "art_gallery"}, CategoryMuseum},
	{[]string{"restaurant", "cafe", "food"}, CategoryRestaurant},
	{[]string{"park", "natural_feature"}, CategoryPark},
	{[]string{"church", "hindu_temple", "place_of_worship", "temple"}, CategoryTemple},
	{[]string{"shopping_mall", "store"}, CategoryShopping},
	{[]string{"tourist_attraction"}, CategoryLandmark},
	{[]string{"historical_place", "monument"}, CategoryHistorical},
}

var culturalTags = map[string]struct{}{
	"museum": {}, "art_gallery": {}, "historical_place": {}, "monument": {},
	"church": {}, "hindu_temple": {}, "place_of_worship": {}, "tourist_attraction": {}, "temple": {},
}

// genericTags never make a useful subcategory.
var genericTags = map[string]struct{}{
	"point_of_interest": {}, "establishment": {}, "food": {},
}

// durationRanges in hours, before the pace multiplier.
var durationRanges = map[string][2]float64{
	CategoryMuseum:     {1.5, 2.5},
	CategoryHistorical: {1.0, 2.0},
	CategoryLandmark:   {0.75, 1.5},
	CategoryPark:       {0.75, 1.25},
	CategoryTemple:     {0.5, 1.0},
	CategoryShopping:   {1.0, 2.0},
	CategoryAttraction: {1.0, 1.5},
}

var defaultDurationRange = [2]float64{1.0, 1.5}

// Activity is a Place with the scheduling metadata derived once at creation.
type Activity struct {
	Place         types.Place
	DurationHours float64
	Cost          float64
	Category      string
	Subcategory   string
	Cultural      bool
	MustVisit     bool
	Score         float64
}

func (a Activity) IsMeal() bool { return a.Category == CategoryRestaurant }

// ResolveCategory maps catalog tags to a scheduling category.
func ResolveCategory(tags []string) string {
	for _, group := range categoryPriority {
		for _, t := range group.tags {
			for _, pt := range tags {
				if pt == t {
					return group.category
				}
			}
		}
	}
	return CategoryAttraction
}

// IsCultural reports whether any tag marks the place as culturally significant.
func IsCultural(tags []string) bool {
	for _, t := range tags {
		if _, ok := culturalTags[t]; ok {
			return true
		}
	}
	return false
}

// ResolveSubcategory returns the most specific non-generic tag.
func ResolveSubcategory(tags []string) string {
	for _, t := range tags {
		if _, ok := genericTags[t]; !ok {
			return t
		}
	}
	return ""
}

// activityFactory derives Activities for one build.
type activityFactory struct {
	budget *BudgetModel
	tier   types.BudgetTier
	pace   PaceConfig
	rng    *rand.Rand
}

func (f activityFactory) newActivity(p types.Place) Activity {
	category := ResolveCategory(p.Types)
	return Activity{
		Place:         p,
		DurationHours: f.duration(category),
		Cost:          f.budget.EstimateCost(p.PriceLevel, f.tier, p.Types),
		Category:      category,
		Subcategory:   ResolveSubcategory(p.Types),
		Cultural:      IsCultural(p.Types),
	}
}

// duration uses the range midpoint unless a seeded generator is present,
// then applies the pace multiplier and rounds to the quarter hour.
func (f activityFactory) duration(category string) float64 {
	r, ok := durationRanges[category]
	if !ok {
		r = defaultDurationRange
	}
	base := (r[0] + r[1]) / 2
	if f.rng != nil {
		base = r[0] + f.rng.Float64()*(r[1]-r[0])
	}
	d := math.Round(base*f.pace.DurationMultiplier*4) / 4
	if d < 0.25 {
		d = 0.25
	}
	return d
}

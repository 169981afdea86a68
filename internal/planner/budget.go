package planner

import (
	"maps"
	"math"
	"math/rand/v2"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// PriceRange is a (min, max) cost in local currency units.
type PriceRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Allocation is the suggested daily split of a budget tier.
type Allocation struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
}

// TierEnvelope describes what a budget tier means in money.
type TierEnvelope struct {
	Min       float64    `json:"min"`
	Max       float64    `json:"max"`
	Average   float64    `json:"average"`
	PerDay    float64    `json:"per_day"`
	Breakdown Allocation `json:"breakdown"`
}

const (
	defaultPricingCategory = "default"

	// absent price signal: deterministic midpoint or a draw from [low, high]
	absentSignalMidpoint = 0.65
	absentSignalLow      = 0.4
	absentSignalHigh     = 0.9

	jitterSpread    = 0.10
	costGranularity = 10.0

	// per-day thresholds for inferring a tier from a custom total
	lowTierCeilingPerDay    = 3500.0
	mediumTierCeilingPerDay = 8000.0
)

var priceSignalMultipliers = [...]float64{0, 0.3, 0.6, 0.85, 1.0}

var fallbackRange = PriceRange{Min: 100, Max: 500}

var defaultPricing = map[string]map[types.BudgetTier]PriceRange{
	"museum": {
		types.BudgetLow: {50, 200}, types.BudgetMedium: {150, 400}, types.BudgetHigh: {300, 800},
	},
	"art_gallery": {
		types.BudgetLow: {0, 150}, types.BudgetMedium: {100, 300}, types.BudgetHigh: {200, 600},
	},
	"church": {
		types.BudgetLow: {0, 50}, types.BudgetMedium: {0, 100}, types.BudgetHigh: {0, 200},
	},
	"hindu_temple": {
		types.BudgetLow: {0, 50}, types.BudgetMedium: {0, 100}, types.BudgetHigh: {50, 300},
	},
	"place_of_worship": {
		types.BudgetLow: {0, 50}, types.BudgetMedium: {0, 100}, types.BudgetHigh: {50, 200},
	},
	"tourist_attraction": {
		types.BudgetLow: {100, 300}, types.BudgetMedium: {200, 600}, types.BudgetHigh: {400, 1200},
	},
	"park": {
		types.BudgetLow: {0, 50}, types.BudgetMedium: {20, 100}, types.BudgetHigh: {50, 200},
	},
	"shopping_mall": {
		types.BudgetLow: {200, 500}, types.BudgetMedium: {500, 1500}, types.BudgetHigh: {1000, 3000},
	},
	"restaurant": {
		types.BudgetLow: {150, 400}, types.BudgetMedium: {400, 1200}, types.BudgetHigh: {1000, 3000},
	},
	"cafe": {
		types.BudgetLow: {100, 250}, types.BudgetMedium: {200, 500}, types.BudgetHigh: {400, 800},
	},
	defaultPricingCategory: {
		types.BudgetLow: {100, 300}, types.BudgetMedium: {250, 600}, types.BudgetHigh: {500, 1200},
	},
}

// pricingTags maps a place tag to its pricing category.
var pricingTags = map[string]string{
	"museum":             "museum",
	"art_gallery":        "art_gallery",
	"church":             "church",
	"hindu_temple":       "hindu_temple",
	"place_of_worship":   "place_of_worship",
	"park":               "park",
	"shopping_mall":      "shopping_mall",
	"restaurant":         "restaurant",
	"cafe":               "cafe",
	"tourist_attraction": "tourist_attraction",
	"point_of_interest":  "tourist_attraction",
}

var defaultEnvelopes = map[types.BudgetTier]TierEnvelope{
	types.BudgetLow: {
		Min: 10000, Max: 30000, Average: 20000, PerDay: 2500,
		Breakdown: Allocation{Accommodation: 600, Food: 700, Activities: 900, Transport: 300},
	},
	types.BudgetMedium: {
		Min: 30000, Max: 60000, Average: 45000, PerDay: 6000,
		Breakdown: Allocation{Accommodation: 2000, Food: 1500, Activities: 1800, Transport: 700},
	},
	types.BudgetHigh: {
		Min: 60000, Max: 150000, Average: 100000, PerDay: 12000,
		Breakdown: Allocation{Accommodation: 4500, Food: 3000, Activities: 3200, Transport: 1300},
	},
}

// BudgetModel estimates stop costs and derives budget envelopes.
// The zero-option model is deterministic.
type BudgetModel struct {
	pricing   map[string]map[types.BudgetTier]PriceRange
	envelopes map[types.BudgetTier]TierEnvelope
	rng       *rand.Rand
}

type BudgetOption func(*BudgetModel)

// WithSeed enables seeded draws for absent price signals and cost jitter.
func WithSeed(seed uint64) BudgetOption {
	return func(b *BudgetModel) {
		b.rng = newRand(seed)
	}
}

// WithCategoryPricing overrides the price range of one category and tier.
func WithCategoryPricing(category string, tier types.BudgetTier, r PriceRange) BudgetOption {
	return func(b *BudgetModel) {
		tiers := maps.Clone(b.pricing[category])
		if tiers == nil {
			tiers = make(map[types.BudgetTier]PriceRange, 1)
		}
		tiers[tier] = r
		b.pricing[category] = tiers
	}
}

func NewBudgetModel(opts ...BudgetOption) *BudgetModel {
	b := &BudgetModel{
		pricing:   maps.Clone(defaultPricing),
		envelopes: defaultEnvelopes,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seeded reports whether the model draws random values.
func (b *BudgetModel) Seeded() bool { return b.rng != nil }

// EstimateCost prices a stop from its coarse price signal (0-4, nil when
// unknown), the traveller's tier and its catalog tags.
func (b *BudgetModel) EstimateCost(priceLevel *int, tier types.BudgetTier, tags []string) float64 {
	r := b.PriceRange(b.PricingCategory(tags), tier)

	var mult float64
	switch {
	case priceLevel != nil:
		mult = priceSignalMultiplier(*priceLevel)
	case b.rng != nil:
		mult = absentSignalLow + b.rng.Float64()*(absentSignalHigh-absentSignalLow)
	default:
		mult = absentSignalMidpoint
	}

	cost := r.Min + (r.Max-r.Min)*mult
	if b.rng != nil {
		cost *= 1 + (b.rng.Float64()*2-1)*jitterSpread
	}
	return math.Max(0, math.Round(cost/costGranularity)*costGranularity)
}

func priceSignalMultiplier(level int) float64 {
	if level < 0 || level >= len(priceSignalMultipliers) {
		return priceSignalMultipliers[2]
	}
	return priceSignalMultipliers[level]
}

// PricingCategory takes the first tag, in order, that has a price table.
func (b *BudgetModel) PricingCategory(tags []string) string {
	for _, t := range tags {
		if c, ok := pricingTags[t]; ok {
			return c
		}
		if _, ok := b.pricing[t]; ok && t != defaultPricingCategory {
			return t
		}
	}
	return defaultPricingCategory
}

func (b *BudgetModel) PriceRange(category string, tier types.BudgetTier) PriceRange {
	tiers, ok := b.pricing[category]
	if !ok {
		tiers = b.pricing[defaultPricingCategory]
	}
	if r, ok := tiers[tier]; ok {
		return r
	}
	return fallbackRange
}

// Envelope returns the money envelope of a tier; unknown tiers get medium.
func (b *BudgetModel) Envelope(tier types.BudgetTier) TierEnvelope {
	if e, ok := b.envelopes[tier]; ok {
		return e
	}
	return b.envelopes[types.BudgetMedium]
}

func (b *BudgetModel) DailyBudget(tier types.BudgetTier) float64 {
	return b.Envelope(tier).PerDay
}

func (b *BudgetModel) TotalBudget(tier types.BudgetTier, days int) float64 {
	return b.DailyBudget(tier) * float64(days)
}

// ActivityBudget is the activities share of the daily allocation over the trip.
func (b *BudgetModel) ActivityBudget(tier types.BudgetTier, days int) float64 {
	return b.Envelope(tier).Breakdown.Activities * float64(days)
}

// InferTier classifies a custom trip total by its per-day amount.
func (b *BudgetModel) InferTier(total float64, days int) types.BudgetTier {
	perDay := total / float64(max(1, days))
	switch {
	case perDay < lowTierCeilingPerDay:
		return types.BudgetLow
	case perDay < mediumTierCeilingPerDay:
		return types.BudgetMedium
	default:
		return types.BudgetHigh
	}
}

// Plan is the resolved budget for one trip.
type Plan struct {
	Tier        types.BudgetTier
	Days        int
	Total       float64
	Daily       float64
	PerActivity float64
}

// PlanFor resolves the effective tier and budgets from the preferences.
// A custom total wins over the tier envelope.
func (b *BudgetModel) PlanFor(prefs types.TravelPreferences) Plan {
	days := prefs.NumDays()
	tier := prefs.BudgetTier
	if !tier.Valid() && prefs.CustomBudget != nil {
		tier = b.InferTier(*prefs.CustomBudget, days)
	}
	if !tier.Valid() {
		tier = types.BudgetMedium
	}

	p := Plan{
		Tier:        tier,
		Days:        days,
		Total:       b.TotalBudget(tier, days),
		Daily:       b.DailyBudget(tier),
		PerActivity: b.Envelope(tier).Breakdown.Activities,
	}
	if prefs.CustomBudget != nil {
		p.Total = *prefs.CustomBudget
		p.Daily = p.Total / float64(days)
	}
	return p
}

package advisory

import (
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

type categoryTips struct {
	general []string
	timing  map[string]string
	budget  map[types.BudgetTier]string
	pace    map[types.Pace]string
}

var builtinTips = map[string]categoryTips{
	"museum": {
		general: []string{
			"Arrive within the first hour of opening for fewer crowds",
			"Photography rules vary, check at the entrance",
		},
		timing: map[string]string{
			"morning":   "Museums are least crowded in the morning",
			"afternoon": "Take short breaks, the galleries are large",
			"evening":   "Check closing time, most museums close by 5-6 PM",
		},
		budget: map[types.BudgetTier]string{
			types.BudgetLow:  "Ask about student and senior discounts",
			types.BudgetHigh: "A private guide adds a lot of context here",
		},
	},
	"temple": {
		general: []string{
			"Remove shoes before entering, shoe stands are usually free",
			"Dress modestly with shoulders and knees covered",
		},
		timing: map[string]string{
			"morning":   "Early morning darshan is the most peaceful",
			"afternoon": "Afternoons are usually the quietest",
			"evening":   "Evening aarti can be very crowded",
		},
	},
	"park": {
		general: []string{
			"Carry water and sunscreen",
			"Good for a slow break between busier stops",
		},
		timing: map[string]string{
			"morning":   "Cool and pleasant in the morning",
			"afternoon": "Can be hot, look for shaded paths",
			"evening":   "Evenings bring a breeze and a good sunset",
		},
		pace: map[types.Pace]string{
			types.PaceRelaxed: "Take your time and enjoy the quiet",
			types.PacePacked:  "A 30-45 minute loop is enough",
		},
	},
	"historical": {
		general: []string{
			"Wear comfortable walking shoes",
			"A guide makes the history much easier to follow",
		},
		timing: map[string]string{
			"morning":   "Cooler weather makes mornings ideal for exploring",
			"afternoon": "Carry a hat and water, there is little shade",
			"evening":   "Many sites close by 6 PM",
		},
	},
	"shopping": {
		general: []string{
			"Bargaining is expected in local markets",
			"Carry a reusable bag",
		},
		timing: map[string]string{
			"morning":   "Some shops only open around 11 AM",
			"afternoon": "Shops are less crowded in the afternoon",
			"evening":   "Evenings are peak hours, expect crowds",
		},
		budget: map[types.BudgetTier]string{
			types.BudgetLow:  "Local markets beat mall prices",
			types.BudgetHigh: "Premium brands are in the larger malls",
		},
	},
	"landmark": {
		general: []string{
			"Check whether tickets must be booked in advance",
			"Look up the best viewpoints beforehand",
		},
		timing: map[string]string{
			"morning":   "Soft morning light is best for photos",
			"afternoon": "Harsh midday light, expect strong shadows in photos",
			"evening":   "Golden hour is the best time for photos",
		},
	},
	"restaurant": {
		general: []string{
			"Try the local specialities",
			"Book ahead if the place is popular",
		},
		timing: map[string]string{
			"breakfast": "Breakfast is usually quick and uncrowded",
			"lunch":     "Lunch hour can be crowded",
			"dinner":    "Reserve a table for dinner",
		},
		budget: map[types.BudgetTier]string{
			types.BudgetLow:  "Local eateries serve authentic food for less",
			types.BudgetHigh: "Fine dining may have a dress code",
		},
	},
}

// fallbackTips builds tips from the category table, using landmark tips
// for unknown categories.
func fallbackTips(req TipRequest) []string {
	ct, ok := builtinTips[req.Category]
	if !ok {
		ct = builtinTips["landmark"]
	}

	tips := make([]string, 0, maxTips)
	tips = append(tips, ct.general...)

	slot := timeOfDay(req.VisitTime)
	if req.Category == "restaurant" {
		slot = mealOf(req.VisitTime)
	}
	if t, ok := ct.timing[slot]; ok {
		tips = append(tips, t)
	}
	if t, ok := ct.budget[req.BudgetTier]; ok {
		tips = append(tips, t)
	}
	if t, ok := ct.pace[req.Pace]; ok {
		tips = append(tips, t)
	}
	return tips[:min(len(tips), maxTips)]
}

func hourOf(hhmm string) (int, bool) {
	h, _, _ := strings.Cut(hhmm, ":")
	n, err := strconv.Atoi(h)
	if err != nil || n < 0 || n > 23 {
		return 0, false
	}
	return n, true
}

func timeOfDay(hhmm string) string {
	h, ok := hourOf(hhmm)
	switch {
	case !ok, h >= 5 && h < 12:
		return "morning"
	case h >= 12 && h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func mealOf(hhmm string) string {
	h, ok := hourOf(hhmm)
	switch {
	case !ok, h < 11:
		return "breakfast"
	case h < 17:
		return "lunch"
	default:
		return "dinner"
	}
}

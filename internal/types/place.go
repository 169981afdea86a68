package types

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat" example:"18.5196"`
	Lng float64 `json:"lng" yaml:"lng" example:"73.8554"`
}

// Place is a point of interest as returned by the place catalog.
// Places are immutable once fetched.
type Place struct {
	ID          string   `json:"place_id" yaml:"id" example:"ChIJ3S-JXmauEmsRUcIaWtf4MzE"`
	Name        string   `json:"name" yaml:"name" example:"Shaniwar Wada"`
	Address     string   `json:"address,omitempty" yaml:"address"`
	Location    Location `json:"location" yaml:"location"`
	Rating      *float64 `json:"rating,omitempty" yaml:"rating"`             // 0-5, absent when unrated
	RatingCount int      `json:"user_ratings_total" yaml:"rating_count"`     // number of reviews
	Types       []string `json:"types" yaml:"types"`                         // catalog category tags, most specific first
	PriceLevel  *int     `json:"price_level,omitempty" yaml:"price_level"`   // 0-4, absent when unknown
}

// HasType reports whether the place carries the given tag.
func (p Place) HasType(t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// RatingValue returns the rating or 0 when the place is unrated.
func (p Place) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

type TravelMode string

const (
	ModeStart     TravelMode = "start"
	ModeWalking   TravelMode = "walking"
	ModeTransit   TravelMode = "transit"
	ModeDriving   TravelMode = "driving"
	ModeMealBreak TravelMode = "meal_break"
)

// TravelInfo is one leg between two consecutive stops.
type TravelInfo struct {
	DistanceKm      float64    `json:"distance_km"`
	DurationMinutes int        `json:"duration_minutes"`
	Mode            TravelMode `json:"mode"`
	Estimated       bool       `json:"estimated,omitempty"` // straight-line fallback, not a routed answer
}
